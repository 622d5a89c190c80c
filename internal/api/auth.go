package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ancare/ancare/internal/common/apperrors"
	"github.com/ancare/ancare/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const (
	pathRegister       = "/register/"
	pathLogin          = "/login/"
	pathLogout         = "/logout/"
	pathHospitalSignup = "/hospital/signup/"
	pathStaffAccess    = "/staff/request-access/"
)

// ErrValidation matches input rejected before any request is sent.
var ErrValidation = apperrors.New("invalid input").SetStatusCode(http.StatusBadRequest)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists the fields that failed client-side checks.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", strings.Join(e.Fields, ", "))
}

// Unwrap exposes ErrValidation, which carries the 400 status, and the
// validator's own error.
func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Err} }

func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return &ValidationError{Fields: fields, Err: err}
}

// Credentials are the username and password sent to /login/.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the parsed /login/ response.
type LoginResponse struct {
	User  session.User    `json:"user,omitempty"`
	Token string          `json:"token,omitempty"`
	Raw   json.RawMessage `json:"-"`
}

// StaffAccessRequest asks the listed hospitals to grant a staff account.
type StaffAccessRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role" validate:"required"`
	Hospitals []ID   `json:"hospitals" validate:"required,min=1"`
}

// Register creates a user account. data is sent as the JSON body.
func (c *Client) Register(ctx context.Context, data any) (json.RawMessage, error) {
	return c.Request(ctx, Request{Path: pathRegister, Method: http.MethodPost, Body: data})
}

// Login authenticates with the backend. When the response carries a user,
// it is recorded in the session store together with the optional token. The
// token is kept only as a record; it is never sent back as a header.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	if err := validateInput(creds); err != nil {
		return nil, err
	}

	raw, err := c.Request(ctx, Request{Path: pathLogin, Method: http.MethodPost, Body: creds})
	if err != nil {
		return nil, err
	}

	out := &LoginResponse{Raw: raw}
	parsed := gjson.ParseBytes(raw)
	if u := parsed.Get("user"); u.IsObject() {
		if err := json.Unmarshal([]byte(u.Raw), &out.User); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
	}
	if t := parsed.Get("token"); t.Exists() && t.Type == gjson.String {
		out.Token = t.String()
	}

	if out.User != nil && c.session != nil {
		if err := c.session.Login(out.User, out.Token); err != nil {
			return out, err
		}
	}
	log.Debug().Str("user_type", out.User.UserType()).Msg("logged in")
	return out, nil
}

// Logout ends the server session and then clears the local session. The
// local session is cleared even when the server call fails; the server error
// is still returned.
func (c *Client) Logout(ctx context.Context) (json.RawMessage, error) {
	raw, reqErr := c.Request(ctx, Request{Path: pathLogout, Method: http.MethodPost})
	if c.session != nil {
		if err := c.session.Logout(); err != nil {
			log.Warn().Err(err).Msg("failed to clear local session")
			if reqErr == nil {
				return raw, err
			}
		}
	}
	return raw, reqErr
}

// HospitalSignup registers a new hospital.
func (c *Client) HospitalSignup(ctx context.Context, data any) (json.RawMessage, error) {
	return c.Request(ctx, Request{Path: pathHospitalSignup, Method: http.MethodPost, Body: data})
}

// RequestStaffAccess files a staff access request for approval by the
// listed hospitals.
func (c *Client) RequestStaffAccess(ctx context.Context, req StaffAccessRequest) (json.RawMessage, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}
	return c.Request(ctx, Request{Path: pathStaffAccess, Method: http.MethodPost, Body: req})
}
