package api

import (
	"context"
	"net/http"
)

const pathPatients = "/patients/api/patients/"

// GetPatients lists the patients visible to the signed-in user.
func (c *Client) GetPatients(ctx context.Context) ([]Patient, error) {
	return getList[Patient](ctx, c, pathPatients)
}

// GetPatient fetches one patient.
func (c *Client) GetPatient(ctx context.Context, id ID) (*Patient, error) {
	var out Patient
	if err := c.call(ctx, Request{Path: resourcePath(pathPatients, id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePatient registers a patient. data is any JSON-serializable value.
func (c *Client) CreatePatient(ctx context.Context, data any) (*Patient, error) {
	return c.writePatient(ctx, http.MethodPost, pathPatients, data)
}

// UpdatePatient replaces every field of a patient.
func (c *Client) UpdatePatient(ctx context.Context, id ID, data any) (*Patient, error) {
	return c.writePatient(ctx, http.MethodPut, resourcePath(pathPatients, id), data)
}

// PartialUpdatePatient changes only the fields present in data.
func (c *Client) PartialUpdatePatient(ctx context.Context, id ID, data any) (*Patient, error) {
	return c.writePatient(ctx, http.MethodPatch, resourcePath(pathPatients, id), data)
}

// DeletePatient removes a patient.
func (c *Client) DeletePatient(ctx context.Context, id ID) (*DeleteResult, error) {
	return c.remove(ctx, resourcePath(pathPatients, id))
}

func (c *Client) writePatient(ctx context.Context, method, path string, data any) (*Patient, error) {
	var out Patient
	if err := c.call(ctx, Request{Path: path, Method: method, Body: data}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
