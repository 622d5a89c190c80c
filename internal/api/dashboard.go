package api

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
)

const (
	pathHospitalDashboard = "/api/dashboard/hospital/"
	pathCountyDashboard   = "/api/dashboard/county/"
	pathWeeklyVisits      = "/patients/api/weekly-patient-visits/"
)

// ANCRecord is one reporting period of antenatal-care indicators for a
// hospital. Every numeric column of the payload lands in Metrics, keyed by
// its JSON name (new_clients, completed4, anc12, ...).
type ANCRecord struct {
	Period  string
	Metrics map[string]float64
}

// Metric returns the named indicator, or 0 when it is missing.
func (r ANCRecord) Metric(name string) float64 {
	return r.Metrics[name]
}

func (r *ANCRecord) UnmarshalJSON(b []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	r.Period = stringField(fields, "periodname", "period")
	r.Metrics = numericFields(fields)
	return nil
}

func (r ANCRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Metrics)+1)
	for k, v := range r.Metrics {
		out[k] = v
	}
	out["periodname"] = r.Period
	return json.Marshal(out)
}

// HospitalDashboard is the analytics payload of the signed-in user's
// hospital.
type HospitalDashboard struct {
	HospitalInfo map[string]any `json:"hospital_info,omitempty"`
	Records      []ANCRecord    `json:"anc_records"`
}

// UnmarshalJSON accepts a bare array of records or an object with
// hospital_info and anc_records.
func (d *HospitalDashboard) UnmarshalJSON(b []byte) error {
	*d = HospitalDashboard{Records: []ANCRecord{}}
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return nil
	}
	if b[0] == '[' {
		return json.Unmarshal(b, &d.Records)
	}

	var obj struct {
		HospitalInfo map[string]any `json:"hospital_info"`
		Records      []ANCRecord    `json:"anc_records"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	d.HospitalInfo = obj.HospitalInfo
	if obj.Records != nil {
		d.Records = obj.Records
	}
	return nil
}

// CountyHospital is one hospital's indicators in the county comparison.
type CountyHospital struct {
	Name              string
	County            string
	SubCounty         string
	IsCurrentHospital bool
	Metrics           map[string]float64
}

// Metric returns the named indicator, or 0 when it is missing.
func (h CountyHospital) Metric(name string) float64 {
	return h.Metrics[name]
}

func (h *CountyHospital) UnmarshalJSON(b []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	h.Name = stringField(fields, "hospital__name", "hospital_name", "name")
	h.County = stringField(fields, "county")
	h.SubCounty = stringField(fields, "sub_county")
	h.IsCurrentHospital = boolField(fields, "is_current_hospital", "isCurrentHospital")
	h.Metrics = numericFields(fields)
	return nil
}

func (h CountyHospital) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(h.Metrics)+4)
	for k, v := range h.Metrics {
		out[k] = v
	}
	out["hospital__name"] = h.Name
	if h.County != "" {
		out["county"] = h.County
	}
	if h.SubCounty != "" {
		out["sub_county"] = h.SubCounty
	}
	if h.IsCurrentHospital {
		out["is_current_hospital"] = true
	}
	return json.Marshal(out)
}

// CountyDashboard compares the hospitals of the user's county.
type CountyDashboard struct {
	CountyInfo map[string]any   `json:"county_info,omitempty"`
	Hospitals  []CountyHospital `json:"hospitals_data"`
}

// UnmarshalJSON accepts a bare array of hospitals or an object with
// county_info and hospitals_data.
func (d *CountyDashboard) UnmarshalJSON(b []byte) error {
	*d = CountyDashboard{Hospitals: []CountyHospital{}}
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return nil
	}
	if b[0] == '[' {
		return json.Unmarshal(b, &d.Hospitals)
	}

	var obj struct {
		CountyInfo map[string]any   `json:"county_info"`
		Hospitals  []CountyHospital `json:"hospitals_data"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	d.CountyInfo = obj.CountyInfo
	if obj.Hospitals != nil {
		d.Hospitals = obj.Hospitals
	}
	return nil
}

// HospitalVisitCount is the number of appointments one hospital has in the
// week.
type HospitalVisitCount struct {
	HospitalName string `json:"hospital__name"`
	Count        int    `json:"count"`
}

// WeeklyDay is the per-day appointment breakdown of the week.
type WeeklyDay struct {
	DayName           string `json:"day_name"`
	Date              string `json:"date"`
	TotalAppointments int    `json:"total_appointments"`
	Scheduled         int    `json:"scheduled"`
	Completed         int    `json:"completed"`
	Missed            int    `json:"missed"`
	Cancelled         int    `json:"cancelled"`
}

// WeeklyVisits summarizes the appointments of the current week.
type WeeklyVisits struct {
	StartWeek         string               `json:"start_week"`
	EndWeek           string               `json:"end_week"`
	TotalAppointments int                  `json:"total_appointments"`
	ByHospital        []HospitalVisitCount `json:"by_hospital"`
	Days              []WeeklyDay          `json:"days"`
	CapacityInfo      map[string]any       `json:"capacity_info,omitempty"`
}

func (w *WeeklyVisits) UnmarshalJSON(b []byte) error {
	type plain WeeklyVisits
	var v plain
	if !isNull(bytes.TrimSpace(b)) {
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
	}
	if v.ByHospital == nil {
		v.ByHospital = []HospitalVisitCount{}
	}
	if v.Days == nil {
		v.Days = []WeeklyDay{}
	}
	*w = WeeklyVisits(v)
	return nil
}

// Utilization returns capacity_info.utilization_percentage, if reported.
func (w WeeklyVisits) Utilization() (float64, bool) {
	v, ok := w.CapacityInfo["utilization_percentage"].(float64)
	return v, ok
}

// GetHospitalDashboardData fetches the hospital analytics payload.
func (c *Client) GetHospitalDashboardData(ctx context.Context) (*HospitalDashboard, error) {
	var out HospitalDashboard
	if err := c.call(ctx, Request{Path: pathHospitalDashboard}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCountyDashboardData fetches the county comparison payload.
func (c *Client) GetCountyDashboardData(ctx context.Context) (*CountyDashboard, error) {
	var out CountyDashboard
	if err := c.call(ctx, Request{Path: pathCountyDashboard}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetWeeklyPatientVisits fetches the current week's appointment summary.
func (c *Client) GetWeeklyPatientVisits(ctx context.Context) (*WeeklyVisits, error) {
	var out WeeklyVisits
	if err := c.call(ctx, Request{Path: pathWeeklyVisits}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MetricNames returns the sorted union of metric names in records.
func MetricNames(records []ANCRecord) []string {
	seen := map[string]struct{}{}
	for _, r := range records {
		for k := range r.Metrics {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// labelFields are never treated as metrics even when they hold numbers.
var labelFields = map[string]bool{
	"id":          true,
	"hospital_id": true,
	"county_id":   true,
	"year":        true,
}

func numericFields(fields map[string]json.RawMessage) map[string]float64 {
	metrics := make(map[string]float64)
	for k, raw := range fields {
		if labelFields[k] {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			metrics[k] = f
		}
	}
	return metrics
}

func stringField(fields map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

func boolField(fields map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		var v bool
		if raw, ok := fields[k]; ok && json.Unmarshal(raw, &v) == nil && v {
			return true
		}
	}
	return false
}

func isNull(b []byte) bool {
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}
