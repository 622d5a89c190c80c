package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a backend primary key. The server uses integer keys for most models
// and string keys (national ID numbers) for some, so both JSON forms decode.
type ID string

func (id ID) String() string { return string(id) }

// IsZero reports whether the ID is empty.
func (id ID) IsZero() bool { return id == "" }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("invalid id %s", b)
		}
		*id = ID(n.String())
	}
	return nil
}

// MarshalJSON writes integer-looking IDs as numbers so the backend's
// primary key fields accept them.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Hospital is a facility as returned by the hospital list and nested in
// patients and appointments.
type Hospital struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	County    string `json:"county,omitempty"`
	SubCounty string `json:"sub_county,omitempty"`
	Ward      string `json:"ward,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Patient is an expectant mother registered with the system.
type Patient struct {
	ID                 ID         `json:"id"`
	Name               string     `json:"name"`
	Phone              string     `json:"phone"`
	DateRegistered     string     `json:"date_registered,omitempty"`
	WeeksPregnant      int        `json:"weeks_pregnant,omitempty"`
	CurrentWeek        int        `json:"current_week,omitempty"`
	Status             string     `json:"status,omitempty"`
	Ward               string     `json:"ward,omitempty"`
	County             string     `json:"county,omitempty"`
	PreferredHospitals []Hospital `json:"preferred_hospitals"`
	SuggestedHospitals []Hospital `json:"suggested_hospitals"`
	EmergencyContact   string     `json:"emergency_contact,omitempty"`
	SuggestionSource   string     `json:"suggestion_source,omitempty"`
}

func (p *Patient) UnmarshalJSON(b []byte) error {
	type plain Patient
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.PreferredHospitals == nil {
		v.PreferredHospitals = []Hospital{}
	}
	if v.SuggestedHospitals == nil {
		v.SuggestedHospitals = []Hospital{}
	}
	*p = Patient(v)
	return nil
}

// PatientRef is the short patient form nested in appointments.
type PatientRef struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusMissed    = "missed"
	StatusCancelled = "cancelled"
)

// Appointment is an ANC visit booked at a hospital.
type Appointment struct {
	ID              ID         `json:"id"`
	Patient         PatientRef `json:"patient"`
	Hospital        Hospital   `json:"hospital"`
	AppointmentDate string     `json:"appointment_date"`
	Status          string     `json:"status"`
	CreatedAt       string     `json:"created_at,omitempty"`
}

// decodeList decodes a JSON array into a non-nil slice. A null body is an
// empty list.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
