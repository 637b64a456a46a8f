package oxygen

import (
	"math"
	"testing"

	"github.com/lox/nodccalc/internal/models"
)

var nan = math.NaN()

func TestReconcile(t *testing.T) {
	tests := []struct {
		name             string
		h2s, btl, ctd    float64
		qh2s, qbtl, qctd string
		want             float64
		wantSource       string
	}{
		{"h2s and bottle valid use anoxic default", 5, 2, nan, "1_0", "1_0", "1_0", 0.01, SourceSulfide},
		{"rejected h2s and bottle below detection", 5, 0.5, nan, "S_0", "<_0", "1_0", 0.01, SourceBottleBelowDetected},
		{"h2s below detection and bottle below detection", 5, 0.5, nan, "<_0", "<_0", "1_0", 0.01, SourceBottleBelowDetected},
		{"h2s below detection and bottle valid", 5, 0.5, nan, "<_0", "1_0", "1_0", 0.5, SourceBottle},
		{"no h2s and bottle valid", nan, 0.5, nan, "1_0", "1_0", "1_0", 0.5, SourceBottle},
		{"h2s valid and bottle missing", 5, nan, nan, "1_0", "1_0", "1_0", 0.01, SourceSulfide},
		{"bottle preferred over ctd", nan, 5, 10, "1_0", "1_0", "1_0", 5, SourceBottle},
		{"suspect bottle falls back to ctd", nan, 5, 10, "1_0", "S", "1_0", 10, SourceCTD},
		{"bottle valid and ctd suspect", nan, 5, 10, "1_0", "1_0", "S", 5, SourceBottle},
		{"nothing valid", nan, nan, nan, "1_0", "1_0", "1_0", nan, SourceInsufficientData},
		{"h2s valid overrides ctd", 5, nan, 10, "1_0", "1_0", "1_0", 0.01, SourceSulfide},
		{"rejected h2s and ctd below detection", 5, nan, 10, "S_0", "1_0", "<_0", 0.01, SourceCTDBelowDetected},
		{"h2s excess forces anoxic default", 100, 2, 10, ">_0", "1_0", "1_0", 0.01, SourceSulfide},
		{"h2s flagged Z is rejected", 5, 3, nan, "Z_0", "1_0", "1_0", 3, SourceBottle},
		{"bottle excess is used", nan, 12, 10, "", ">", "1", 12, SourceBottle},
		{"rejected bottle and rejected ctd", nan, 5, 6, "", "4", "3", nan, SourceInsufficientData},
	}

	r := NewReconciler(DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Reconcile(
				models.Reading(tt.btl, tt.qbtl),
				models.Reading(tt.ctd, tt.qctd),
				models.Reading(tt.h2s, tt.qh2s),
			)
			if got.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", got.Source, tt.wantSource)
			}
			if math.IsNaN(tt.want) {
				if got.Value.Valid {
					t.Errorf("Value = %v, want undefined", got.Value.Float64)
				}
				return
			}
			if !got.Value.Valid || got.Value.Float64 != tt.want {
				t.Errorf("Value = %+v, want %v", got.Value, tt.want)
			}
		})
	}
}

func TestReconcileZeroFloor(t *testing.T) {
	opts := DefaultOptions()
	opts.AnoxicOxygen = 0
	r := NewReconciler(opts)

	got := r.Reconcile(models.Reading(2, "1"), models.Missing(""), models.Reading(5, "1"))
	if !got.Value.Valid || got.Value.Float64 != 0 {
		t.Errorf("Value = %+v, want defined 0", got.Value)
	}
}

func TestReconcileSulfidePriority(t *testing.T) {
	r := NewReconciler(DefaultOptions())
	readings := []models.Measurement{
		models.Missing(""),
		models.Reading(0, "1"),
		models.Reading(3, "1"),
		models.Reading(0.2, "6"),
		models.Reading(4, "4"),
		models.Reading(9, ">"),
	}

	for _, sulfide := range []models.Measurement{models.Reading(1, "1"), models.Reading(80, ">_0")} {
		for _, btl := range readings {
			for _, ctd := range readings {
				got := r.Reconcile(btl, ctd, sulfide)
				if !got.Value.Valid || got.Value.Float64 != DefaultAnoxicOxygen || got.Source != SourceSulfide {
					t.Fatalf("bottle %+v ctd %+v: got %+v", btl, ctd, got)
				}
			}
		}
	}
}
