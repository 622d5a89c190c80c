package session

import (
	"strings"

	"github.com/mitchellh/mapstructure"
)

// User is the identity object returned by the backend on login. It is kept
// opaque so that fields the client does not know about survive a round trip
// through storage.
type User map[string]any

// Profile is the typed view of the User fields this client reads.
type Profile struct {
	ID           string `mapstructure:"id"`
	Username     string `mapstructure:"username"`
	FirstName    string `mapstructure:"first_name"`
	LastName     string `mapstructure:"last_name"`
	Email        string `mapstructure:"email"`
	UserType     string `mapstructure:"user_type"`
	HospitalID   string `mapstructure:"hospital_id"`
	HospitalName string `mapstructure:"hospital_name"`
}

// Profile decodes the known fields of u. Numbers are accepted where strings
// are expected since the backend is not consistent about ID types.
func (u User) Profile() (Profile, error) {
	var p Profile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return Profile{}, err
	}
	if err := dec.Decode(map[string]any(u)); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UserType returns the role discriminator, or "" when it is missing.
func (u User) UserType() string {
	p, err := u.Profile()
	if err != nil {
		return ""
	}
	return p.UserType
}

// DisplayName returns the best human-readable name available.
func (u User) DisplayName() string {
	p, err := u.Profile()
	if err != nil {
		return ""
	}
	if full := strings.TrimSpace(p.FirstName + " " + p.LastName); full != "" {
		return full
	}
	if p.Username != "" {
		return p.Username
	}
	return p.Email
}
