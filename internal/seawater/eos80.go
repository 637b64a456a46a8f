// Package seawater implements the EOS-80 / UNESCO seawater routines used to
// compute oxygen saturation.
//
// Temperatures are ITS-90 and converted to IPTS-68 internally where the
// published fits require it. Pressures are sea pressure in dbar.
package seawater

import "math"

const t68Factor = 1.00024

// EOS80 satisfies oxygen.Physics.
type EOS80 struct{}

// PressureFromDepth uses Saunders (1981). Depth is positive down.
func (EOS80) PressureFromDepth(depth, latitude float64) float64 {
	sinLat := math.Sin(latitude * math.Pi / 180)
	c1 := (5.92 + 5.25*sinLat*sinLat) * 1e-3
	return ((1 - c1) - math.Sqrt((1-c1)*(1-c1)-8.84e-6*depth)) / 4.42e-6
}

// PotentialTemperature integrates the adiabatic lapse rate from pressure
// to the surface with the Fofonoff (1977) Runge-Kutta scheme.
func (EOS80) PotentialTemperature(salinity, temperature, pressure float64) float64 {
	return potentialTemperature68(salinity, temperature*t68Factor, pressure, 0) / t68Factor
}

// Density is the UNESCO (1981) equation of state.
func (EOS80) Density(salinity, temperature, pressure float64) float64 {
	return density68(salinity, temperature*t68Factor, pressure)
}

// OxygenSolubility is the Garcia & Gordon (1992) fit to Benson & Krause
// data, in µmol/kg.
func (EOS80) OxygenSolubility(salinity, potentialTemperature float64) float64 {
	const (
		a0 = 5.80871
		a1 = 3.20291
		a2 = 4.17887
		a3 = 5.10006
		a4 = -9.86643e-2
		a5 = 3.80369
		b0 = -7.01577e-3
		b1 = -7.70028e-3
		b2 = -1.13864e-2
		b3 = -9.51519e-3
		c0 = -2.75915e-7
	)

	pt68 := potentialTemperature * t68Factor
	y := math.Log((298.15 - pt68) / (273.15 + pt68))
	x := salinity

	return math.Exp(a0 + y*(a1+y*(a2+y*(a3+y*(a4+a5*y)))) +
		x*(b0+y*(b1+y*(b2+b3*y))+c0*x))
}

func adiabaticLapseRate68(s, t, p float64) float64 {
	ds := s - 35
	return (((-2.1687e-16*t+1.8676e-14)*t-4.6206e-13)*p+
		((2.7759e-12*t-1.1351e-10)*ds+((-5.4481e-14*t+8.733e-12)*t-6.7795e-10)*t+1.8741e-8))*p +
		(-4.2393e-8*t+1.8932e-6)*ds +
		((6.6228e-10*t-6.836e-8)*t+8.5258e-6)*t + 3.5803e-5
}

func potentialTemperature68(s, t, p, pr float64) float64 {
	h := pr - p
	xk := h * adiabaticLapseRate68(s, t, p)
	t += 0.5 * xk
	q := xk
	p += 0.5 * h

	xk = h * adiabaticLapseRate68(s, t, p)
	t += 0.29289322 * (xk - q)
	q = 0.58578644*xk + 0.121320344*q

	xk = h * adiabaticLapseRate68(s, t, p)
	t += 1.707106781 * (xk - q)
	q = 3.414213562*xk - 4.121320344*q
	p += 0.5 * h

	xk = h * adiabaticLapseRate68(s, t, p)
	return t + (xk-2*q)/6
}

func density0(s, t float64) float64 {
	t2, t3, t4, t5 := t*t, t*t*t, t*t*t*t, t*t*t*t*t
	s15 := s * math.Sqrt(s)

	rhoW := 999.842594 + 6.793952e-2*t - 9.095290e-3*t2 + 1.001685e-4*t3 - 1.120083e-6*t4 + 6.536332e-9*t5

	return rhoW +
		s*(0.824493-4.0899e-3*t+7.6438e-5*t2-8.2467e-7*t3+5.3875e-9*t4) +
		s15*(-5.72466e-3+1.0227e-4*t-1.6546e-6*t2) +
		4.8314e-4*s*s
}

// secantBulkModulus takes pressure in bar.
func secantBulkModulus(s, t, p float64) float64 {
	t2, t3, t4 := t*t, t*t*t, t*t*t*t
	s15 := s * math.Sqrt(s)

	kw := 19652.21 + 148.4206*t - 2.327105*t2 + 1.360477e-2*t3 - 5.155288e-5*t4
	k0 := kw + s*(54.6746-0.603459*t+1.09987e-2*t2-6.1670e-5*t3) + s15*(7.944e-2+1.6483e-2*t-5.3009e-4*t2)

	aw := 3.239908 + 1.43713e-3*t + 1.16092e-4*t2 - 5.77905e-7*t3
	a := aw + s*(2.2838e-3-1.0981e-5*t-1.6078e-6*t2) + 1.91075e-4*s15

	bw := 8.50935e-5 - 6.12293e-6*t + 5.2787e-8*t2
	b := bw + s*(-9.9348e-7+2.0816e-8*t+9.1697e-10*t2)

	return k0 + a*p + b*p*p
}

func density68(s, t, p float64) float64 {
	bar := p / 10
	return density0(s, t) / (1 - bar/secantBulkModulus(s, t, bar))
}
