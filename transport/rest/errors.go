package rest

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

type errorBody struct {
	Kind    apperror.Kind `json:"kind"`
	Message string        `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)

	c.AbortWithStatusJSON(apperror.HTTPStatus(kind), errorResponse{
		Error: errorBody{Kind: kind, Message: apperror.PublicMessage(err)},
	})
}

// bindJSON decodes the body into target, reporting failures as InvalidInput.
func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		writeError(c, fmt.Errorf("%w: %w", apperror.ErrInvalidInput, err))
		return false
	}

	return true
}
