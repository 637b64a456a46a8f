// Package config defines institutional rule-sets: flag vocabularies,
// thresholds, branch policies and column naming.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/lox/nodccalc/internal/nutrients"
	"github.com/lox/nodccalc/internal/oxygen"
	"github.com/lox/nodccalc/internal/quality"
	"github.com/lox/nodccalc/internal/table"
)

var ErrUnknownPreset = errors.New("unknown preset")

// Oxygen sources that gate the DIN low-oxygen rule.
const (
	DINOxygenBottle     = "bottle"
	DINOxygenReconciled = "reconciled"
)

// RuleSet is the complete configuration for one derivation run.
type RuleSet struct {
	Name  string `yaml:"name" validate:"required"`
	Flags Flags  `yaml:"flags"`

	AnoxicOxygen       float64                   `yaml:"anoxic_oxygen" validate:"gte=0"`
	LowOxygenThreshold float64                   `yaml:"low_oxygen_threshold" validate:"gt=0"`
	LowOxygenAmmonium  nutrients.LowOxygenPolicy `yaml:"low_oxygen_ammonium" validate:"oneof=usable exclude_below_detection"`
	RequireAmmonium    bool                      `yaml:"require_ammonium"`
	DINOxygenSource    string                    `yaml:"din_oxygen_source" validate:"oneof=bottle reconciled"`
	ReferenceLatitude  float64                   `yaml:"reference_latitude" validate:"gte=-90,lte=90"`

	Columns table.ColumnMap `yaml:"columns"`
}

type Flags struct {
	Nitrogen quality.FlagSet `yaml:"nitrogen"`
	Oxygen   quality.FlagSet `yaml:"oxygen"`
	Sulfide  quality.FlagSet `yaml:"sulfide"`
}

// NODC is the default rule-set: anoxic water is represented by a small
// positive oxygen floor.
func NODC() RuleSet {
	return RuleSet{
		Name: "nodc",
		Flags: Flags{
			Nitrogen: quality.NitrogenFlags(),
			Oxygen:   quality.OxygenFlags(),
			Sulfide:  quality.SulfideFlags(),
		},
		AnoxicOxygen:       oxygen.DefaultAnoxicOxygen,
		LowOxygenThreshold: nutrients.DefaultLowOxygenThreshold,
		LowOxygenAmmonium:  nutrients.AddUsableAmmonium,
		RequireAmmonium:    true,
		DINOxygenSource:    DINOxygenBottle,
		ReferenceLatitude:  oxygen.DefaultReferenceLatitude,
		Columns:            table.NODCColumns(),
	}
}

// ZeroFloor represents anoxic water as exactly zero oxygen and keeps
// detection-limit ammonium out of the low-oxygen sum.
func ZeroFloor() RuleSet {
	rs := NODC()
	rs.Name = "zero-floor"
	rs.AnoxicOxygen = 0
	rs.LowOxygenAmmonium = nutrients.SkipBelowDetectionAmmonium
	return rs
}

var presets = map[string]func() RuleSet{
	"nodc":       NODC,
	"zero-floor": ZeroFloor,
}

func Preset(name string) (RuleSet, error) {
	fn, ok := presets[name]
	if !ok {
		return RuleSet{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return fn(), nil
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load starts from the named preset and overlays the YAML file at path, if
// path is non-empty. The result is validated.
func Load(path, preset string) (*RuleSet, error) {
	rs, err := Preset(preset)
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rule-set: %w", err)
		}
		if err := yaml.Unmarshal(data, &rs); err != nil {
			return nil, fmt.Errorf("parse rule-set %s: %w", path, err)
		}
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (rs RuleSet) Validate() error {
	if err := validator.New().Struct(rs); err != nil {
		return fmt.Errorf("validate rule-set %q: %w", rs.Name, err)
	}
	return nil
}

// WithScheme replaces the input column names with a built-in scheme,
// keeping the configured output names.
func (rs RuleSet) WithScheme(name string) (RuleSet, error) {
	cols, err := table.Scheme(name)
	if err != nil {
		return rs, err
	}
	cols.Output = rs.Columns.Output
	rs.Columns = cols
	return rs, nil
}

func (rs RuleSet) YAML() ([]byte, error) {
	return yaml.Marshal(rs)
}

func (rs RuleSet) NutrientOptions() nutrients.Options {
	return nutrients.Options{
		Nitrogen:           rs.Flags.Nitrogen,
		Oxygen:             rs.Flags.Oxygen,
		Sulfide:            rs.Flags.Sulfide,
		LowOxygenThreshold: rs.LowOxygenThreshold,
		LowOxygenAmmonium:  rs.LowOxygenAmmonium,
		RequireAmmonium:    rs.RequireAmmonium,
	}
}

func (rs RuleSet) OxygenOptions() oxygen.Options {
	return oxygen.Options{
		Oxygen:       rs.Flags.Oxygen,
		Sulfide:      rs.Flags.Sulfide,
		AnoxicOxygen: rs.AnoxicOxygen,
	}
}
