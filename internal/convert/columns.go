package convert

import (
	"github.com/lox/nodccalc/internal/table"
)

// OxygenColumn writes in*44.661 to out (mL/L to µmol/kg).
func OxygenColumn(f *table.Frame, in, out string) error {
	return mapColumn(f, in, out, OxygenMLToUmol)
}

// NutrientColumn writes in converted from g/L to mol/L to out. An unknown
// nutrient leaves the frame untouched.
func NutrientColumn(f *table.Frame, nutrient, in, out string) error {
	if _, ok := MolarMass(nutrient); !ok {
		return nil
	}
	return mapColumn(f, in, out, func(v float64) float64 {
		return GramsToMoles(nutrient, v)
	})
}

func mapColumn(f *table.Frame, in, out string, fn func(float64) float64) error {
	src, err := f.Float(in)
	if err != nil {
		return err
	}
	dst := make([]float64, len(src))
	for i, v := range src {
		dst[i] = fn(v)
	}
	return f.SetFloat(out, dst)
}
