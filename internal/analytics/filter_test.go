package analytics

import (
	"testing"
	"time"

	"github.com/ancare/ancare/internal/api"
	"github.com/stretchr/testify/assert"
)

func patientNames(ps []api.Patient) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

func TestFilterPatients(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	patients := []api.Patient{
		{Name: "Achieng Odhiambo", Phone: "0711000001", DateRegistered: "2025-03-18"},
		{Name: "Mary Wambui", Phone: "0722000002", DateRegistered: "2025-03-02T09:00:00Z"},
		{Name: "Fatuma Hassan", Phone: "0733000003", DateRegistered: "2025-02-27"},
		{Name: "Grace Achieng", Phone: "0744000004"},
	}

	tests := []struct {
		name   string
		search string
		filter string
		want   []string
	}{
		{name: "everyone", filter: FilterAll, want: []string{"Achieng Odhiambo", "Mary Wambui", "Fatuma Hassan", "Grace Achieng"}},
		{name: "name ignores case", search: "achieng", filter: FilterAll, want: []string{"Achieng Odhiambo", "Grace Achieng"}},
		{name: "phone", search: "0722", want: []string{"Mary Wambui"}},
		{name: "recent", filter: FilterRecent, want: []string{"Achieng Odhiambo"}},
		{name: "this month", filter: FilterThisMonth, want: []string{"Achieng Odhiambo", "Mary Wambui"}},
		{name: "search and filter", search: "grace", filter: FilterThisMonth, want: []string{}},
		{name: "unknown filter", filter: "bogus", want: []string{"Achieng Odhiambo", "Mary Wambui", "Fatuma Hassan", "Grace Achieng"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterPatients(patients, tt.search, tt.filter, now)
			assert.Equal(t, tt.want, patientNames(got))
		})
	}
}

func TestFilterAppointments(t *testing.T) {
	appointments := []api.Appointment{
		{ID: "1", Patient: api.PatientRef{Name: "Achieng"}, Hospital: api.Hospital{Name: "Ahero"}, Status: api.StatusScheduled},
		{ID: "2", Patient: api.PatientRef{Name: "Mary"}, Hospital: api.Hospital{Name: "JOOTRH"}, Status: api.StatusMissed},
	}

	assert.Len(t, FilterAppointments(appointments, ""), 2)
	assert.Equal(t, api.ID("2"), FilterAppointments(appointments, "MISS")[0].ID)
	assert.Equal(t, api.ID("1"), FilterAppointments(appointments, "ahero")[0].ID)
	assert.NotNil(t, FilterAppointments(appointments, "nobody"))
	assert.Empty(t, FilterAppointments(appointments, "nobody"))
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                 string
		n, page, perPage     int
		wantPage, wantPages  int
		wantStart, wantEnd   int
	}{
		{name: "first", n: 25, page: 1, perPage: 10, wantPage: 1, wantPages: 3, wantStart: 0, wantEnd: 10},
		{name: "last partial", n: 25, page: 3, perPage: 10, wantPage: 3, wantPages: 3, wantStart: 20, wantEnd: 25},
		{name: "past the end", n: 25, page: 9, perPage: 10, wantPage: 3, wantPages: 3, wantStart: 20, wantEnd: 25},
		{name: "zero page", n: 25, page: 0, perPage: 10, wantPage: 1, wantPages: 3, wantStart: 0, wantEnd: 10},
		{name: "empty", n: 0, page: 2, perPage: 10, wantPage: 1, wantPages: 0, wantStart: 0, wantEnd: 0},
		{name: "default size", n: 12, page: 2, perPage: 0, wantPage: 2, wantPages: 2, wantStart: 10, wantEnd: 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.n, tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, p.Number)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantStart, p.Start)
			assert.Equal(t, tt.wantEnd, p.End)
			assert.Equal(t, tt.n, p.Total)
		})
	}
}
