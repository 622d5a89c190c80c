// Package analytics holds the arithmetic the dashboards and lists perform on
// gateway payloads: ranking hospitals by an indicator, totals and averages,
// period trends, and patient/appointment filtering with pagination.
package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/ancare/ancare/internal/api"
	"github.com/tidwall/sjson"
)

// Measured is anything exposing named numeric indicators.
type Measured interface {
	Metric(name string) float64
}

// Performance categories relative to the county average.
const (
	Excellent        = "Excellent"
	Good             = "Good"
	Average          = "Average"
	NeedsImprovement = "Needs Improvement"
)

// RankedHospital is a county hospital with its 1-based rank for a metric.
type RankedHospital struct {
	api.CountyHospital
	Rank int
}

// MarshalJSON flattens the hospital fields and adds "rank".
func (r RankedHospital) MarshalJSON() ([]byte, error) {
	data, err := r.CountyHospital.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(data, "rank", r.Rank)
}

// RankHospitals orders hospitals by metric, highest first. Missing values
// count as 0 and ties keep their input order.
func RankHospitals(hospitals []api.CountyHospital, metric string) []RankedHospital {
	ranked := make([]RankedHospital, len(hospitals))
	for i, h := range hospitals {
		ranked[i] = RankedHospital{CountyHospital: h}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Metric(metric) > ranked[b].Metric(metric)
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// CurrentHospitalRank returns the rank of the hospital flagged as the user's
// own, if any.
func CurrentHospitalRank(hospitals []api.CountyHospital, metric string) (int, bool) {
	for _, h := range RankHospitals(hospitals, metric) {
		if h.IsCurrentHospital {
			return h.Rank, true
		}
	}
	return 0, false
}

// TopPerformers returns the n best hospitals for metric.
func TopPerformers(hospitals []api.CountyHospital, metric string, n int) []RankedHospital {
	ranked := RankHospitals(hospitals, metric)
	if n < 0 {
		n = 0
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// TotalMetric sums metric over items.
func TotalMetric[T Measured](items []T, metric string) float64 {
	var total float64
	for _, it := range items {
		total += it.Metric(metric)
	}
	return total
}

// AverageMetric is the rounded mean of metric over items, 0 for no items.
func AverageMetric[T Measured](items []T, metric string) float64 {
	if len(items) == 0 {
		return 0
	}
	return round(TotalMetric(items, metric) / float64(len(items)))
}

// Rate returns numerator/denominator totals as a rounded percentage, 0 when
// the denominator total is 0.
func Rate[T Measured](items []T, numerator, denominator string) float64 {
	den := TotalMetric(items, denominator)
	if den == 0 {
		return 0
	}
	return round(TotalMetric(items, numerator) / den * 100)
}

// PerformanceCategory grades value against average. With a zero average any
// positive value is Excellent and zero needs improvement.
func PerformanceCategory(value, average float64) string {
	ratio := value / average
	switch {
	case ratio >= 1.2:
		return Excellent
	case ratio >= 1.0:
		return Good
	case ratio >= 0.8:
		return Average
	default:
		return NeedsImprovement
	}
}

// SubCountyStats aggregates one sub-county.
type SubCountyStats struct {
	SubCounty string  `json:"sub_county"`
	Hospitals int     `json:"hospitals"`
	Total     float64 `json:"total"`
	Average   float64 `json:"average"`
}

// SubCountyBreakdown groups hospitals by sub-county, sorted by name.
func SubCountyBreakdown(hospitals []api.CountyHospital, metric string) []SubCountyStats {
	groups := map[string]*SubCountyStats{}
	for _, h := range hospitals {
		s, ok := groups[h.SubCounty]
		if !ok {
			s = &SubCountyStats{SubCounty: h.SubCounty}
			groups[h.SubCounty] = s
		}
		s.Hospitals++
		s.Total += h.Metric(metric)
	}

	out := make([]SubCountyStats, 0, len(groups))
	for _, s := range groups {
		s.Average = round(s.Total / float64(s.Hospitals))
		out = append(out, *s)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].SubCounty < out[b].SubCounty })
	return out
}

// Trend is one period of a metric with its change from the period before.
type Trend struct {
	Period        string  `json:"period"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
	HasPrevious   bool    `json:"has_previous"`
}

// PeriodTrends computes period-over-period changes of metric in record
// order. The percent change is 0 when the previous value is 0.
func PeriodTrends(records []api.ANCRecord, metric string) []Trend {
	out := make([]Trend, len(records))
	for i, r := range records {
		t := Trend{Period: r.Period, Value: r.Metric(metric)}
		if i > 0 {
			prev := out[i-1].Value
			t.HasPrevious = true
			t.Change = t.Value - prev
			if prev != 0 {
				t.PercentChange = math.Round(t.Change/prev*1000) / 10
			}
		}
		out[i] = t
	}
	return out
}

// FormatPeriod turns quarter periods like "2024-Q1" into "Q1 2024". Other
// period names are returned unchanged.
func FormatPeriod(period string) string {
	year, quarter, ok := strings.Cut(period, "-Q")
	if !ok {
		return period
	}
	return "Q" + quarter + " " + year
}

// round rounds half up like the dashboards do.
func round(v float64) float64 {
	return math.Floor(v + 0.5)
}
