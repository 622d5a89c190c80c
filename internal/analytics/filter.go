package analytics

import (
	"strings"
	"time"

	"github.com/ancare/ancare/internal/api"
)

// Patient list filters.
const (
	FilterAll       = "all"
	FilterRecent    = "recent"
	FilterThisMonth = "this_month"
)

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", time.DateOnly}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FilterPatients keeps the patients whose name contains search (ignoring
// case) or whose phone contains it, and who match filter relative to now.
// "recent" means registered in the last 7 days and "this_month" since the
// first of now's month. Patients without a readable registration date never
// match those two filters. Any other filter value keeps everyone.
func FilterPatients(patients []api.Patient, search, filter string, now time.Time) []api.Patient {
	needle := strings.ToLower(search)
	var since time.Time
	switch filter {
	case FilterRecent:
		since = now.AddDate(0, 0, -7)
	case FilterThisMonth:
		since = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}

	out := []api.Patient{}
	for _, p := range patients {
		if !strings.Contains(strings.ToLower(p.Name), needle) && !strings.Contains(p.Phone, search) {
			continue
		}
		if !since.IsZero() {
			registered, ok := parseDate(p.DateRegistered, now.Location())
			if !ok || registered.Before(since) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// FilterAppointments keeps appointments whose patient name, hospital name or
// status contains search, ignoring case.
func FilterAppointments(appointments []api.Appointment, search string) []api.Appointment {
	needle := strings.ToLower(search)
	out := []api.Appointment{}
	for _, a := range appointments {
		if strings.Contains(strings.ToLower(a.Patient.Name), needle) ||
			strings.Contains(strings.ToLower(a.Hospital.Name), needle) ||
			strings.Contains(strings.ToLower(a.Status), needle) {
			out = append(out, a)
		}
	}
	return out
}

// DefaultPerPage is the list page size.
const DefaultPerPage = 10

// Page is a window into a list of Total items.
type Page struct {
	Number     int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
	Start      int `json:"-"`
	End        int `json:"-"`
}

// Paginate computes the bounds of page (1-based) for n items. The page is
// clamped into range and perPage below 1 uses DefaultPerPage.
func Paginate(n, page, perPage int) Page {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (n + perPage - 1) / perPage
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	start := min((page-1)*perPage, n)
	end := min(start+perPage, n)
	return Page{
		Number:     page,
		PerPage:    perPage,
		TotalPages: totalPages,
		Total:      n,
		Start:      start,
		End:        end,
	}
}
