package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

const maxErrorBody = 64 << 10

type errorResponse struct {
	Error struct {
		Kind    apperror.Kind `json:"kind"`
		Message string        `json:"message"`
	} `json:"error"`
}

// Client speaks the JSON conventions shared by the room and game services.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Do sends body as JSON and decodes a 2xx answer into target. Transport
// failures wrap ErrUpstream; error answers come back as *apperror.Error.
func (that *Client) Do(ctx context.Context, method, path string, body, target any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, that.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := that.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", apperror.ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if target == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: malformed response from %s: %w", apperror.ErrUpstream, path, err)
	}

	return nil
}

// decodeError trusts the status only when the body is the services' error
// envelope. Anything else (a proxy page, a wrong URL) means the peer is not
// reachable as expected and is reported as ErrUpstream.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Kind != "" {
		return apperror.New(body.Error.Kind, body.Error.Message)
	}

	return fmt.Errorf("%w: unexpected status %d from %s", apperror.ErrUpstream, resp.StatusCode, resp.Request.URL.Path)
}
