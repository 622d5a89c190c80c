package api

import (
	"context"
	"net/http"
)

const pathAppointments = "/patients/api/appointments/"

// GetAppointments lists the appointments visible to the signed-in user.
func (c *Client) GetAppointments(ctx context.Context) ([]Appointment, error) {
	return getList[Appointment](ctx, c, pathAppointments)
}

// GetAppointment fetches one appointment.
func (c *Client) GetAppointment(ctx context.Context, id ID) (*Appointment, error) {
	var out Appointment
	if err := c.call(ctx, Request{Path: resourcePath(pathAppointments, id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAppointment books an appointment. The body should carry patient_id,
// hospital_id and appointment_date.
func (c *Client) CreateAppointment(ctx context.Context, data any) (*Appointment, error) {
	return c.writeAppointment(ctx, http.MethodPost, pathAppointments, data)
}

// UpdateAppointment replaces an appointment.
func (c *Client) UpdateAppointment(ctx context.Context, id ID, data any) (*Appointment, error) {
	return c.writeAppointment(ctx, http.MethodPut, resourcePath(pathAppointments, id), data)
}

// PartialUpdateAppointment is typically used to change the status.
func (c *Client) PartialUpdateAppointment(ctx context.Context, id ID, data any) (*Appointment, error) {
	return c.writeAppointment(ctx, http.MethodPatch, resourcePath(pathAppointments, id), data)
}

func (c *Client) DeleteAppointment(ctx context.Context, id ID) (*DeleteResult, error) {
	return c.remove(ctx, resourcePath(pathAppointments, id))
}

func (c *Client) writeAppointment(ctx context.Context, method, path string, data any) (*Appointment, error) {
	var out Appointment
	if err := c.call(ctx, Request{Path: path, Method: method, Body: data}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
