package config

import (
	"delivery-allocation-service/internal/domain"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type limitsFile struct {
	MaxWorkingMinutes *float64 `yaml:"max_working_minutes"`
	MaxDistanceKm     *float64 `yaml:"max_distance_km"`
	SpeedKmh          *float64 `yaml:"speed_kmh"`
	MinimumGuarantee  *float64 `yaml:"minimum_guarantee"`
}

// LoadLimits returns the default engine limits overlaid with any values from the
// YAML file at path. An empty path yields the defaults.
func LoadLimits(path string) (domain.Limits, error) {
	limits := domain.DefaultLimits()
	if path == "" {
		return limits, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return limits, fmt.Errorf("load limits: read %q: %w", path, err)
	}

	return ParseLimits(data)
}

// ParseLimits overlays YAML-encoded limits on the defaults.
func ParseLimits(data []byte) (domain.Limits, error) {
	limits := domain.DefaultLimits()

	var f limitsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return limits, fmt.Errorf("parse limits: %w", err)
	}

	overlay := []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"max_working_minutes", f.MaxWorkingMinutes, &limits.MaxWorkingMinutes},
		{"max_distance_km", f.MaxDistanceKm, &limits.MaxDistanceKm},
		{"speed_kmh", f.SpeedKmh, &limits.SpeedKmh},
		{"minimum_guarantee", f.MinimumGuarantee, &limits.MinimumGuarantee},
	}
	for _, o := range overlay {
		if o.src == nil {
			continue
		}
		if *o.src <= 0 {
			return domain.DefaultLimits(), fmt.Errorf("parse limits: %s must be positive, got %v", o.name, *o.src)
		}
		*o.dst = *o.src
	}

	return limits, nil
}
