// Package quality classifies measurements by their value presence and
// quality flag code.
package quality

import (
	"strings"

	"github.com/lox/nodccalc/internal/models"
)

// Class is the resolution class of a single measurement.
type Class int

const (
	Missing Class = iota
	Rejected
	BelowDetection
	Excess
	Valid
)

func (c Class) String() string {
	switch c {
	case Missing:
		return "missing"
	case Rejected:
		return "rejected"
	case BelowDetection:
		return "below_detection"
	case Excess:
		return "excess"
	case Valid:
		return "valid"
	default:
		return "unknown"
	}
}

// Usable reports whether the value may take part in a sum.
func (c Class) Usable() bool {
	return c == Valid || c == BelowDetection || c == Excess
}

// Confirmed reports whether the value is a real reading rather than a
// detection-limit estimate.
func (c Class) Confirmed() bool {
	return c == Valid || c == Excess
}

// FlagSet lists the flag codes recognised for one parameter family.
type FlagSet struct {
	Rejected       []string `yaml:"rejected" validate:"dive,required"`
	BelowDetection []string `yaml:"below_detection" validate:"dive,required"`
	Excess         []string `yaml:"excess" validate:"dive,required"`
}

type Classifier struct {
	rejected map[string]struct{}
	below    map[string]struct{}
	excess   map[string]struct{}
}

func NewClassifier(fs FlagSet) *Classifier {
	return &Classifier{
		rejected: tokenSet(fs.Rejected),
		below:    tokenSet(fs.BelowDetection),
		excess:   tokenSet(fs.Excess),
	}
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[Code(t)] = struct{}{}
	}
	return set
}

// Classify returns the class of m. Unrecognised codes are Valid.
func (c *Classifier) Classify(m models.Measurement) Class {
	if !m.Value.Valid {
		return Missing
	}
	code := Code(m.Flag)
	if _, ok := c.rejected[code]; ok {
		return Rejected
	}
	if _, ok := c.below[code]; ok {
		return BelowDetection
	}
	if _, ok := c.excess[code]; ok {
		return Excess
	}
	return Valid
}

// Code strips the "_<source>" provenance suffix from a flag.
func Code(flag string) string {
	code, _, _ := strings.Cut(strings.TrimSpace(flag), "_")
	return code
}
