// Package oxygen reconciles bottle, CTD and sulfide readings into one
// dissolved oxygen value and converts oxygen to percent saturation.
package oxygen

import (
	"database/sql"

	"github.com/lox/nodccalc/internal/models"
	"github.com/lox/nodccalc/internal/quality"
)

// DefaultAnoxicOxygen is substituted when sulfide or a detection-limit
// oxygen reading indicates anoxic water.
const DefaultAnoxicOxygen = 0.01

const (
	SourceSulfide             = "sulfide"
	SourceBottleBelowDetected = "bottle_below_detection"
	SourceBottle              = "bottle"
	SourceCTD                 = "ctd"
	SourceCTDBelowDetected    = "ctd_below_detection"
	SourceInsufficientData    = "insufficient"
)

type Options struct {
	Oxygen       quality.FlagSet
	Sulfide      quality.FlagSet
	AnoxicOxygen float64
}

func DefaultOptions() Options {
	return Options{
		Oxygen:       quality.OxygenFlags(),
		Sulfide:      quality.SulfideFlags(),
		AnoxicOxygen: DefaultAnoxicOxygen,
	}
}

type Result struct {
	Value  sql.NullFloat64
	Source string
}

type Reconciler struct {
	oxygen  *quality.Classifier
	sulfide *quality.Classifier
	anoxic  float64
}

func NewReconciler(opts Options) *Reconciler {
	return &Reconciler{
		oxygen:  quality.NewClassifier(opts.Oxygen),
		sulfide: quality.NewClassifier(opts.Sulfide),
		anoxic:  opts.AnoxicOxygen,
	}
}

// Reconcile picks one oxygen value. Confirmed sulfide (including a ">"
// reading) forces the anoxic default whatever the oxygen readings say.
func (r *Reconciler) Reconcile(bottle, ctd, sulfide models.Measurement) Result {
	bottleClass := r.oxygen.Classify(bottle)
	ctdClass := r.oxygen.Classify(ctd)

	switch {
	case r.sulfide.Classify(sulfide).Confirmed():
		return r.anoxicResult(SourceSulfide)
	case bottleClass == quality.BelowDetection:
		return r.anoxicResult(SourceBottleBelowDetected)
	case bottleClass.Confirmed():
		return Result{Value: bottle.Value, Source: SourceBottle}
	case ctdClass.Confirmed():
		return Result{Value: ctd.Value, Source: SourceCTD}
	case ctdClass == quality.BelowDetection:
		return r.anoxicResult(SourceCTDBelowDetected)
	default:
		return Result{Source: SourceInsufficientData}
	}
}

func (r *Reconciler) anoxicResult(source string) Result {
	return Result{Value: sql.NullFloat64{Float64: r.anoxic, Valid: true}, Source: source}
}
