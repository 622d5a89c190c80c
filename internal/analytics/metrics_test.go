package analytics

import (
	"encoding/json"
	"testing"

	"github.com/ancare/ancare/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hospital(name, subCounty string, current bool, metrics map[string]float64) api.CountyHospital {
	return api.CountyHospital{Name: name, SubCounty: subCounty, IsCurrentHospital: current, Metrics: metrics}
}

func countyFixture() []api.CountyHospital {
	return []api.CountyHospital{
		hospital("Kisumu County Referral", "Kisumu Central", true, map[string]float64{"new_clients": 195, "completed4": 115}),
		hospital("JOOTRH", "Kisumu West", false, map[string]float64{"new_clients": 220, "completed4": 130}),
		hospital("Ahero", "Nyando", false, map[string]float64{"new_clients": 120, "completed4": 70}),
		hospital("Awasi", "Nyando", false, map[string]float64{"new_clients": 85}),
		hospital("Nyakach", "Nyakach", false, map[string]float64{"new_clients": 120, "completed4": 60}),
	}
}

func TestRankHospitals(t *testing.T) {
	ranked := RankHospitals(countyFixture(), "completed4")
	require.Len(t, ranked, 5)

	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Name
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, []string{"JOOTRH", "Kisumu County Referral", "Ahero", "Nyakach", "Awasi"}, names)

	// equal values keep input order
	ranked = RankHospitals(countyFixture(), "new_clients")
	assert.Equal(t, "Ahero", ranked[2].Name)
	assert.Equal(t, "Nyakach", ranked[3].Name)

	assert.Empty(t, RankHospitals(nil, "new_clients"))
}

func TestCurrentHospitalRank(t *testing.T) {
	rank, ok := CurrentHospitalRank(countyFixture(), "new_clients")
	assert.True(t, ok)
	assert.Equal(t, 2, rank)

	_, ok = CurrentHospitalRank(countyFixture()[1:], "new_clients")
	assert.False(t, ok)
}

func TestTopPerformers(t *testing.T) {
	top := TopPerformers(countyFixture(), "new_clients", 3)
	require.Len(t, top, 3)
	assert.Equal(t, "JOOTRH", top[0].Name)

	assert.Len(t, TopPerformers(countyFixture()[:2], "new_clients", 3), 2)
	assert.Empty(t, TopPerformers(countyFixture(), "new_clients", -1))
}

func TestRankedHospitalJSON(t *testing.T) {
	top := TopPerformers(countyFixture(), "new_clients", 1)
	data, err := json.Marshal(top[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"hospital__name":"JOOTRH","sub_county":"Kisumu West","new_clients":220,"completed4":130,"rank":1}`, string(data))
}

func TestTotalsAndAverages(t *testing.T) {
	hospitals := countyFixture()
	assert.Equal(t, 740.0, TotalMetric(hospitals, "new_clients"))
	assert.Equal(t, 148.0, AverageMetric(hospitals, "new_clients"))
	assert.Equal(t, 75.0, AverageMetric(hospitals, "completed4"))
	assert.Equal(t, 0.0, AverageMetric([]api.CountyHospital{}, "new_clients"))
	assert.Equal(t, 51.0, Rate(hospitals, "completed4", "new_clients"))
	assert.Equal(t, 0.0, Rate(hospitals, "completed4", "missing"))

	records := []api.ANCRecord{
		{Period: "2024-Q1", Metrics: map[string]float64{"anc12": 70}},
		{Period: "2024-Q2", Metrics: map[string]float64{"anc12": 75}},
	}
	assert.Equal(t, 145.0, TotalMetric(records, "anc12"))
	assert.Equal(t, 73.0, AverageMetric(records, "anc12"))
}

func TestPerformanceCategory(t *testing.T) {
	tests := []struct {
		value, average float64
		want           string
	}{
		{value: 120, average: 100, want: Excellent},
		{value: 119, average: 100, want: Good},
		{value: 100, average: 100, want: Good},
		{value: 80, average: 100, want: Average},
		{value: 79, average: 100, want: NeedsImprovement},
		{value: 5, average: 0, want: Excellent},
		{value: 0, average: 0, want: NeedsImprovement},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PerformanceCategory(tt.value, tt.average), "%v/%v", tt.value, tt.average)
	}
}

func TestSubCountyBreakdown(t *testing.T) {
	stats := SubCountyBreakdown(countyFixture(), "new_clients")
	require.Len(t, stats, 4)
	assert.Equal(t, SubCountyStats{SubCounty: "Kisumu Central", Hospitals: 1, Total: 195, Average: 195}, stats[0])
	assert.Equal(t, SubCountyStats{SubCounty: "Nyando", Hospitals: 2, Total: 205, Average: 103}, stats[3])
	assert.Empty(t, SubCountyBreakdown(nil, "new_clients"))
}

func TestPeriodTrends(t *testing.T) {
	records := []api.ANCRecord{
		{Period: "W1", Metrics: map[string]float64{"new_clients": 0}},
		{Period: "W2", Metrics: map[string]float64{"new_clients": 40}},
		{Period: "W3", Metrics: map[string]float64{"new_clients": 30}},
	}
	trends := PeriodTrends(records, "new_clients")
	require.Len(t, trends, 3)

	assert.False(t, trends[0].HasPrevious)
	assert.Equal(t, Trend{Period: "W2", Value: 40, Change: 40, HasPrevious: true}, trends[1])
	assert.Equal(t, Trend{Period: "W3", Value: 30, Change: -10, PercentChange: -25, HasPrevious: true}, trends[2])
}

func TestFormatPeriod(t *testing.T) {
	assert.Equal(t, "Q1 2024", FormatPeriod("2024-Q1"))
	assert.Equal(t, "2024-01", FormatPeriod("2024-01"))
	assert.Equal(t, "", FormatPeriod(""))
}
