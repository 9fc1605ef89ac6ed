package pkg

import "github.com/google/uuid"

// GenerateNewID - generates a new unique id for users and rooms.
func GenerateNewID() string {
	return uuid.NewString()
}
