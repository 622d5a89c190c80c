package api

import (
	"context"
	"encoding/json"

	"github.com/ancare/ancare/internal/common/httpclient"
)

const pathHospitals = "/"

// GetHospitals lists the hospitals known to the backend.
func (c *Client) GetHospitals(ctx context.Context) ([]Hospital, error) {
	return getList[Hospital](ctx, c, pathHospitals)
}

// getList fetches a collection. The result is never nil.
func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	resp, err := c.do(ctx, Request{Path: path})
	if err != nil {
		return nil, err
	}
	out, err := decodeList[T](json.RawMessage(resp.Body))
	if err != nil {
		return nil, &httpclient.ParseError{StatusCode: resp.StatusCode, Body: resp.Body, Err: err}
	}
	return out, nil
}
