// Package convert scales raw measurements between units.
package convert

import (
	"strings"
)

// OxygenUmolPerML converts a volumetric oxygen concentration in mL/L to
// µmol/kg-equivalent.
const OxygenUmolPerML = 44.661

// Molar masses in g/mol.
const (
	MolarMassNitrogen   = 14.006720
	MolarMassPhosphorus = 30.973762
	MolarMassSilicon    = 28.085530
)

var molarMass = map[string]float64{
	"N":  MolarMassNitrogen,
	"P":  MolarMassPhosphorus,
	"SI": MolarMassSilicon,
}

func OxygenMLToUmol(v float64) float64 {
	return v * OxygenUmolPerML
}

func OxygenUmolToML(v float64) float64 {
	return v / OxygenUmolPerML
}

// MolarMass returns the molar mass for a nutrient key ("N", "P", "SI").
func MolarMass(nutrient string) (float64, bool) {
	mm, ok := molarMass[strings.ToUpper(strings.TrimSpace(nutrient))]
	return mm, ok
}

// GramsToMoles converts g/L to mol/L. Unknown nutrients are returned
// unchanged.
func GramsToMoles(nutrient string, v float64) float64 {
	mm, ok := MolarMass(nutrient)
	if !ok {
		return v
	}
	return v / mm
}

// MolesToGrams converts mol/L to g/L. Unknown nutrients are returned
// unchanged.
func MolesToGrams(nutrient string, v float64) float64 {
	mm, ok := MolarMass(nutrient)
	if !ok {
		return v
	}
	return v * mm
}

// Nutrients lists the supported nutrient keys.
func Nutrients() []string {
	return []string{"N", "P", "SI"}
}
