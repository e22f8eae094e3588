// Package client is a Go client for the pcfseg REST API.
package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/chrissnell/pcfseg/internal/constants"
	"github.com/chrissnell/pcfseg/internal/storage"
	"github.com/chrissnell/pcfseg/internal/types"
	"github.com/chrissnell/pcfseg/pkg/responseformat"
)

// APIError is returned for a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pcfseg API returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to one pcfseg server.
type Client struct {
	http *resty.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL+constants.APIPrefix).
		SetHeader("Accept", responseformat.ContentTypeJSON).
		SetHeader("User-Agent", "pcfseg-client/"+constants.Version).
		SetTimeout(60 * time.Second)
	return &Client{http: c}
}

// SetTimeout changes the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) *Client {
	c.http.SetTimeout(d)
	return c
}

// Segment segments one series.
func (c *Client) Segment(ctx context.Context, req types.SegmentRequest) (*types.SegmentResponse, error) {
	var out types.SegmentResponse
	if err := c.do(ctx, resty.MethodPost, "/segment", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SegmentArms segments depth ratios per chromosome arm.
func (c *Client) SegmentArms(ctx context.Context, req types.ArmsRequest) (*types.ArmsResponse, error) {
	var out types.ArmsResponse
	if err := c.do(ctx, resty.MethodPost, "/arms", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRun fetches a stored run.
func (c *Client) GetRun(ctx context.Context, id string) (*storage.Run, error) {
	var out storage.Run
	if err := c.do(ctx, resty.MethodGet, "/runs/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status reports server health.
func (c *Client) Status(ctx context.Context) (*types.StatusResponse, error) {
	var out types.StatusResponse
	if err := c.do(ctx, resty.MethodGet, "/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var apiErr responseformat.ErrorResponse

	req := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&apiErr)
	if body != nil {
		req.SetHeader("Content-Type", responseformat.ContentTypeJSON).SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status()
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return nil
}
