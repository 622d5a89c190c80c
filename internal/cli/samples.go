package cli

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/ancare/ancare/internal/api"
	"gopkg.in/yaml.v3"
)

//go:embed samples/*.yaml
var samplesFS embed.FS

// loadSample decodes an embedded sample payload into out through the same
// JSON decoding the gateway applies to live responses.
func loadSample(name string, out any) error {
	data, err := samplesFS.ReadFile("samples/" + name)
	if err != nil {
		return fmt.Errorf("sample %s: %w", name, err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("sample %s: %w", name, err)
	}
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("sample %s: %w", name, err)
	}
	return json.Unmarshal(jsonData, out)
}

func sampleHospitalDashboard() (*api.HospitalDashboard, error) {
	var d api.HospitalDashboard
	if err := loadSample("hospital_dashboard.yaml", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func sampleCountyDashboard() (*api.CountyDashboard, error) {
	var d api.CountyDashboard
	if err := loadSample("county_dashboard.yaml", &d); err != nil {
		return nil, err
	}
	return &d, nil
}
