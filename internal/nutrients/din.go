// Package nutrients derives dissolved inorganic nitrogen (DIN) from the
// individual nitrogen species of a sample.
//
// NOx is first reconstructed from nitrate and nitrite when the combined
// measurement is unusable. DIN is then chosen by an ordered list of rules
// gated on sulfide presence and low oxygen; the first rule whose guard holds
// supplies the value.
package nutrients

import (
	"database/sql"

	"github.com/lox/nodccalc/internal/models"
	"github.com/lox/nodccalc/internal/quality"
)

// LowOxygenPolicy controls how ammonium enters the low-oxygen sum.
type LowOxygenPolicy string

const (
	// AddUsableAmmonium adds ammonium whenever it is not missing or rejected.
	AddUsableAmmonium LowOxygenPolicy = "usable"
	// SkipBelowDetectionAmmonium leaves detection-limit ammonium out of the sum.
	SkipBelowDetectionAmmonium LowOxygenPolicy = "exclude_below_detection"
)

const DefaultLowOxygenThreshold = 2.0

// Rule names reported in Result.Rule.
const (
	RuleSulfidic         = "sulfidic"
	RuleLowOxygen        = "low_oxygen"
	RuleDetectionFloor   = "detection_floor"
	RuleOxicSum          = "oxic_sum"
	RuleOxicNOx          = "oxic_nox"
	RuleNOxWithoutAmmon  = "oxic_nox_without_ammonium"
	RuleInsufficientData = "insufficient"
)

type Options struct {
	Nitrogen           quality.FlagSet
	Oxygen             quality.FlagSet
	Sulfide            quality.FlagSet
	LowOxygenThreshold float64
	LowOxygenAmmonium  LowOxygenPolicy
	// RequireAmmonium leaves DIN undefined in oxic water when ammonium is
	// unusable. When false NOx alone is reported.
	RequireAmmonium bool
}

func DefaultOptions() Options {
	return Options{
		Nitrogen:           quality.NitrogenFlags(),
		Oxygen:             quality.OxygenFlags(),
		Sulfide:            quality.SulfideFlags(),
		LowOxygenThreshold: DefaultLowOxygenThreshold,
		LowOxygenAmmonium:  AddUsableAmmonium,
		RequireAmmonium:    true,
	}
}

// Input holds the measurements the resolver reads for one sample. Oxygen
// is whichever oxygen reading gates the low-oxygen rule.
type Input struct {
	Ammonium models.Measurement
	Nitrite  models.Measurement
	Nitrate  models.Measurement
	NOx      models.Measurement
	Sulfide  models.Measurement
	Oxygen   models.Measurement
}

// InputFromSample picks the nitrogen species and bottle oxygen of s.
func InputFromSample(s models.Sample) Input {
	return Input{
		Ammonium: s.Ammonium,
		Nitrite:  s.Nitrite,
		Nitrate:  s.Nitrate,
		NOx:      s.NOx,
		Sulfide:  s.Sulfide,
		Oxygen:   s.BottleOxygen,
	}
}

type Result struct {
	NOxCorrected sql.NullFloat64
	DIN          sql.NullFloat64
	Rule         string
}

type Resolver struct {
	nitrogen *quality.Classifier
	oxygen   *quality.Classifier
	sulfide  *quality.Classifier
	opts     Options
	rules    []rule
}

func NewResolver(opts Options) *Resolver {
	if opts.LowOxygenAmmonium == "" {
		opts.LowOxygenAmmonium = AddUsableAmmonium
	}
	return &Resolver{
		nitrogen: quality.NewClassifier(opts.Nitrogen),
		oxygen:   quality.NewClassifier(opts.Oxygen),
		sulfide:  quality.NewClassifier(opts.Sulfide),
		opts:     opts,
		rules:    buildRules(opts),
	}
}

// Resolve computes corrected NOx and DIN for one sample.
func (r *Resolver) Resolve(in Input) Result {
	c := r.classify(in)
	for _, rl := range r.rules {
		if rl.when(&c) {
			return Result{NOxCorrected: c.nox, DIN: rl.then(&c), Rule: rl.name}
		}
	}
	return Result{NOxCorrected: c.nox, Rule: RuleInsufficientData}
}

// Rules lists the rule names in evaluation order.
func (r *Resolver) Rules() []string {
	names := make([]string, 0, len(r.rules)+1)
	for _, rl := range r.rules {
		names = append(names, rl.name)
	}
	return append(names, RuleInsufficientData)
}

func (r *Resolver) classify(in Input) classification {
	c := classification{
		ammonium:     r.nitrogen.Classify(in.Ammonium),
		ammoniumVal:  in.Ammonium.Value.Float64,
		nitrate:      r.nitrogen.Classify(in.Nitrate),
		nitrite:      r.nitrogen.Classify(in.Nitrite),
		nitrox:       r.nitrogen.Classify(in.NOx),
		sulfideValid: r.sulfide.Classify(in.Sulfide).Confirmed(),
	}

	oxy := r.oxygen.Classify(in.Oxygen)
	c.lowOxygen = oxy != quality.Missing && oxy != quality.Rejected &&
		in.Oxygen.Value.Float64 <= r.opts.LowOxygenThreshold

	c.nox, c.noxBelow = correctNOx(in, c)
	return c
}

// correctNOx reconstructs NOx from nitrate and nitrite when the combined
// measurement is missing or rejected.
func correctNOx(in Input, c classification) (sql.NullFloat64, bool) {
	if c.nitrox.Usable() {
		return in.NOx.Value, c.nitrox == quality.BelowDetection
	}

	if c.nitrate == quality.BelowDetection && c.nitrite == quality.BelowDetection {
		// detection-limit proxy, not a true sum
		return in.Nitrate.Value, true
	}

	if c.nitrate.Usable() {
		sum := in.Nitrate.Value.Float64
		if c.nitrite.Usable() {
			sum += in.Nitrite.Value.Float64
		}
		return sql.NullFloat64{Float64: sum, Valid: true}, false
	}

	return sql.NullFloat64{}, false
}
