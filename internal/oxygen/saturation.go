package oxygen

import (
	"database/sql"
	"math"

	"github.com/lox/nodccalc/internal/convert"
	"github.com/lox/nodccalc/internal/models"
)

// DefaultReferenceLatitude is used to turn depth into sea pressure. The
// latitude has very little effect on the result.
const DefaultReferenceLatitude = 58.0

// Physics supplies the seawater routines the saturation calculation needs.
type Physics interface {
	// PressureFromDepth returns sea pressure in dbar for depth in metres.
	PressureFromDepth(depth, latitude float64) float64
	// PotentialTemperature returns θ referenced to the surface.
	PotentialTemperature(salinity, temperature, pressure float64) float64
	// OxygenSolubility returns solubility in µmol/kg at surface pressure.
	OxygenSolubility(salinity, potentialTemperature float64) float64
	// Density returns in-situ density in kg/m³.
	Density(salinity, temperature, pressure float64) float64
}

type SaturationCalculator struct {
	physics  Physics
	latitude float64
}

func NewSaturationCalculator(physics Physics, referenceLatitude float64) *SaturationCalculator {
	return &SaturationCalculator{physics: physics, latitude: referenceLatitude}
}

// Saturation returns oxygen (mL/L) as a percentage of the solubility at the
// sample's salinity and potential temperature. Any missing input gives an
// undefined result.
func (c *SaturationCalculator) Saturation(oxygen, salinity, temperature, depth sql.NullFloat64) sql.NullFloat64 {
	if !oxygen.Valid || !salinity.Valid || !temperature.Valid || !depth.Valid {
		return sql.NullFloat64{}
	}

	s := salinity.Float64
	p := c.physics.PressureFromDepth(depth.Float64, c.latitude)
	theta := c.physics.PotentialTemperature(s, temperature.Float64, p)
	// potential density: the parcel brought to the surface
	rho := c.physics.Density(s, theta, 0)
	sol := c.physics.OxygenSolubility(s, theta)

	solML := sol * rho / 1000 / convert.OxygenUmolPerML
	if solML == 0 || math.IsNaN(solML) || math.IsInf(solML, 0) {
		return sql.NullFloat64{}
	}
	return models.Null(oxygen.Float64 / solML * 100)
}
