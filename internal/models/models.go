package models

import (
	"database/sql"
	"math"
)

// Measurement is one sensor or bottle reading with its quality flag.
// A Value with Valid=false is a missing reading.
type Measurement struct {
	Value sql.NullFloat64
	Flag  string // "<code>" or "<code>_<source>"
}

// Reading builds a Measurement from a float where NaN means missing.
func Reading(v float64, flag string) Measurement {
	return Measurement{Value: Null(v), Flag: flag}
}

// Missing builds a Measurement with no value.
func Missing(flag string) Measurement {
	return Measurement{Flag: flag}
}

type Sample struct {
	Ammonium     Measurement // AMON
	Nitrite      Measurement // NTRI
	Nitrate      Measurement // NTRA
	NOx          Measurement // NTRZ
	Sulfide      Measurement // H2S
	BottleOxygen Measurement // DOXY_BTL
	CTDOxygen    Measurement // DOXY_CTD

	Salinity    sql.NullFloat64 // practical salinity
	Temperature sql.NullFloat64 // in-situ, °C
	Depth       sql.NullFloat64 // metres, positive down
}

type Derived struct {
	NOxCorrected     sql.NullFloat64
	DIN              sql.NullFloat64
	Oxygen           sql.NullFloat64
	OxygenSaturation sql.NullFloat64
	DINRule          string
	OxygenRule       string
}

// Null converts NaN or ±Inf to an invalid NullFloat64.
func Null(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// Float converts back to the NaN convention used by frame columns.
func Float(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
