// Package comfort computes the PMV (Predicted Mean Vote) thermal-comfort index.
package comfort

import (
	"math"

	"smartcomfort/internal/models"
)

// Input bounds. Values outside are clamped before the heat balance is solved.
const (
	MinTempC       = -10.0
	MaxTempC       = 50.0
	MinAirVelocity = 0.1 // m/s
	MinMet         = 0.8
	MaxMet         = 4.0
	MinClo         = 0.0
	MaxClo         = 2.0

	// PMV scale bounds.
	MinPMV = -3.0
	MaxPMV = 3.0
)

// Solver tuning.
const (
	maxIterations  = 200
	convergenceEps = 1e-4
	relaxation     = 0.5

	metToWatts   = 58.15 // W/m² per met
	cloToM2KW    = 0.155 // m²K/W per clo
	cloBreakpnt  = 0.078
	stefanFactor = 3.96e-8
	kelvin       = 273.15
)

// Personal describes the occupant side of the heat balance.
type Personal struct {
	MetabolicRate float64 // met
	Insulation    float64 // clo
	AirVelocity   float64 // m/s
}

// DefaultPersonal is a seated occupant in light indoor clothing with still air.
func DefaultPersonal() Personal {
	return Personal{
		MetabolicRate: 1.0,
		Insulation:    0.61,
		AirVelocity:   0.1,
	}
}

// ComputeComfort evaluates the PMV index for the given room and occupant conditions.
//
// NaN air temperature, radiant temperature or humidity produce PMV 0.0 instead of an error.
// When the clothing temperature does not converge within the iteration budget the last
// iterate is used and Converged is false.
func ComputeComfort(airTemp, radiantTemp, relHumidity, metabolicRate, insulation, airVelocity float64) models.ComfortReading {
	reading := models.ComfortReading{
		AirTemp:          airTemp,
		RadiantTemp:      radiantTemp,
		RelativeHumidity: relHumidity,
	}
	if math.IsNaN(airTemp) || math.IsNaN(radiantTemp) || math.IsNaN(relHumidity) {
		reading.PMV = 0.0
		return reading
	}

	ta := clamp(airTemp, MinTempC, MaxTempC)
	tr := radiantTemp
	if tr < MinTempC || tr > MaxTempC {
		tr = ta
	}
	rh := clamp(relHumidity, 0, 100)
	va := math.Max(sanitize(airVelocity, MinAirVelocity), MinAirVelocity)
	met := clamp(sanitize(metabolicRate, MinMet), MinMet, MaxMet)
	clo := clamp(sanitize(insulation, MinClo), MinClo, MaxClo)

	reading.AirTemp, reading.RadiantTemp, reading.RelativeHumidity = ta, tr, rh

	b := newBalance(ta, tr, rh, met, clo, va)
	tcl, converged := b.solveClothingTemp()
	reading.Converged = converged

	pmv := b.sensationFactor() * b.residual(tcl)
	if math.IsNaN(pmv) {
		pmv = 0.0
	}
	reading.PMV = clamp(pmv, MinPMV, MaxPMV)
	return reading
}

// Compute is ComputeComfort with the occupant factors bundled.
func Compute(airTemp, radiantTemp, relHumidity float64, p Personal) models.ComfortReading {
	return ComputeComfort(airTemp, radiantTemp, relHumidity, p.MetabolicRate, p.Insulation, p.AirVelocity)
}

// SaturationVaporPressure returns the saturation vapour pressure in kPa at tempC.
func SaturationVaporPressure(tempC float64) float64 {
	return 0.6105 * math.Exp((17.27*tempC)/(tempC+237.3))
}

// balance holds the derived terms of one heat-balance evaluation.
type balance struct {
	ta, tr float64
	va     float64
	m, w   float64 // metabolic heat and external work, W/m²
	pa     float64 // partial vapour pressure, Pa
	fcl    float64 // clothing area factor
	icl    float64 // clothing resistance, m²K/W
}

func newBalance(ta, tr, rh, met, clo, va float64) balance {
	b := balance{
		ta:  ta,
		tr:  tr,
		va:  va,
		m:   met * metToWatts,
		w:   0,
		pa:  (rh / 100) * SaturationVaporPressure(ta) * 1000,
		icl: clo * cloToM2KW,
	}
	if clo <= cloBreakpnt {
		b.fcl = 1.05 + 0.1*clo
	} else {
		b.fcl = 1.0 + 0.2*clo
	}
	return b
}

// convection returns the larger of the forced and natural convection coefficients.
func (b balance) convection(tcl float64) float64 {
	forced := 12.1 * math.Sqrt(math.Max(0.0001, b.va))
	natural := 2.38 * math.Pow(math.Abs(tcl-b.ta), 0.25)
	return math.Max(forced, natural)
}

func (b balance) radiation(tcl float64) float64 {
	return stefanFactor * b.fcl * (math.Pow(tcl+kelvin, 4) - math.Pow(b.tr+kelvin, 4))
}

// solveClothingTemp runs the relaxed fixed-point iteration for the clothing surface temperature.
func (b balance) solveClothingTemp() (float64, bool) {
	tcl := b.ta + 0.1
	for i := 0; i < maxIterations; i++ {
		hc := b.convection(tcl)
		target := 35.7 - 0.028*(b.m-b.w) - b.icl*(b.radiation(tcl)+b.fcl*hc*(tcl-b.ta))
		next := tcl + relaxation*(target-tcl)
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return tcl, false
		}
		if math.Abs(next-tcl) < convergenceEps {
			return next, true
		}
		tcl = next
	}
	return tcl, false
}

func (b balance) sensationFactor() float64 {
	return 0.303*math.Exp(-0.036*b.m) + 0.028
}

// residual is the six-term heat balance of the body at clothing temperature tcl.
func (b balance) residual(tcl float64) float64 {
	mw := b.m - b.w
	skinDiffusion := 3.05e-3 * (5733.0 - 6.99*mw - b.pa)
	sweat := 0.42 * (mw - metToWatts)
	latentResp := 1.7e-5 * b.m * (5867.0 - b.pa)
	dryResp := 0.0014 * b.m * (34.0 - b.ta)
	return mw - skinDiffusion - sweat - latentResp - dryResp - b.radiation(tcl) - b.fcl*b.convection(tcl)*(tcl-b.ta)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sanitize replaces NaN occupant factors with a fallback.
func sanitize(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return v
}
