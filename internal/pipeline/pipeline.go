// Package pipeline derives NOx, DIN, reconciled oxygen and oxygen
// saturation for every row of a frame.
package pipeline

import (
	"context"
	"log"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/nodccalc/internal/config"
	"github.com/lox/nodccalc/internal/metrics"
	"github.com/lox/nodccalc/internal/models"
	"github.com/lox/nodccalc/internal/nutrients"
	"github.com/lox/nodccalc/internal/oxygen"
	"github.com/lox/nodccalc/internal/table"
)

const defaultChunkSize = 1024

type Processor struct {
	rules      config.RuleSet
	din        *nutrients.Resolver
	reconciler *oxygen.Reconciler
	saturation *oxygen.SaturationCalculator
	workers    int
	chunkSize  int
}

type Option func(*Processor)

// WithWorkers bounds the number of chunks evaluated concurrently.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithChunkSize(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.chunkSize = n
		}
	}
}

func New(rules config.RuleSet, physics oxygen.Physics, opts ...Option) *Processor {
	p := &Processor{
		rules:      rules,
		din:        nutrients.NewResolver(rules.NutrientOptions()),
		reconciler: oxygen.NewReconciler(rules.OxygenOptions()),
		saturation: oxygen.NewSaturationCalculator(physics, rules.ReferenceLatitude),
		workers:    runtime.GOMAXPROCS(0),
		chunkSize:  defaultChunkSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Derive computes all derived quantities for one sample.
func (p *Processor) Derive(s models.Sample) models.Derived {
	o2 := p.reconciler.Reconcile(s.BottleOxygen, s.CTDOxygen, s.Sulfide)

	in := nutrients.InputFromSample(s)
	if p.rules.DINOxygenSource == config.DINOxygenReconciled {
		in.Oxygen = models.Measurement{Value: o2.Value}
	}
	din := p.din.Resolve(in)

	return models.Derived{
		NOxCorrected:     din.NOxCorrected,
		DIN:              din.DIN,
		Oxygen:           o2.Value,
		OxygenSaturation: p.saturation.Saturation(o2.Value, s.Salinity, s.Temperature, s.Depth),
		DINRule:          din.Rule,
		OxygenRule:       o2.Source,
	}
}

// DeriveAll evaluates samples in parallel chunks. Results are in input
// order.
func (p *Processor) DeriveAll(ctx context.Context, samples []models.Sample) ([]models.Derived, error) {
	out := make([]models.Derived, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for start := 0; start < len(samples); start += p.chunkSize {
		end := min(start+p.chunkSize, len(samples))
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				out[i] = p.Derive(samples[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Process derives every row of f and appends the output columns.
func (p *Processor) Process(ctx context.Context, f *table.Frame) error {
	started := time.Now()

	samples, err := table.Samples(f, p.rules.Columns)
	if err != nil {
		return err
	}

	derived, err := p.DeriveAll(ctx, samples)
	if err != nil {
		return err
	}

	if err := table.WriteDerived(f, p.rules.Columns.Output, derived); err != nil {
		return err
	}

	s := summarize(derived)
	s.record()
	metrics.BatchDuration.Observe(time.Since(started).Seconds())

	log.Printf("pipeline: derived %d rows with rule-set %s in %s (undefined: din=%d o2=%d saturation=%d)",
		len(derived), p.rules.Name, time.Since(started).Round(time.Millisecond),
		s.undefinedDIN, s.undefinedOxygen, s.undefinedSaturation)
	return nil
}

type summary struct {
	rows                int
	dinRules            map[string]int
	oxygenRules         map[string]int
	undefinedNOx        int
	undefinedDIN        int
	undefinedOxygen     int
	undefinedSaturation int
}

func summarize(derived []models.Derived) summary {
	s := summary{
		rows:        len(derived),
		dinRules:    make(map[string]int),
		oxygenRules: make(map[string]int),
	}
	for _, d := range derived {
		s.dinRules[d.DINRule]++
		s.oxygenRules[d.OxygenRule]++
		if !d.NOxCorrected.Valid {
			s.undefinedNOx++
		}
		if !d.DIN.Valid {
			s.undefinedDIN++
		}
		if !d.Oxygen.Valid {
			s.undefinedOxygen++
		}
		if !d.OxygenSaturation.Valid {
			s.undefinedSaturation++
		}
	}
	return s
}

func (s summary) record() {
	metrics.RowsProcessed.Add(float64(s.rows))
	for rule, n := range s.dinRules {
		metrics.DINRuleApplied.WithLabelValues(rule).Add(float64(n))
	}
	for rule, n := range s.oxygenRules {
		metrics.OxygenRuleApplied.WithLabelValues(rule).Add(float64(n))
	}
	metrics.UndefinedResults.WithLabelValues("nox_corrected").Add(float64(s.undefinedNOx))
	metrics.UndefinedResults.WithLabelValues("din").Add(float64(s.undefinedDIN))
	metrics.UndefinedResults.WithLabelValues("oxygen").Add(float64(s.undefinedOxygen))
	metrics.UndefinedResults.WithLabelValues("oxygen_saturation").Add(float64(s.undefinedSaturation))
}
