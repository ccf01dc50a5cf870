package hardware

import "math"

// ThermistorParams describes an NTC thermistor in a voltage divider read by an ADC.
// Uses the B-parameter model.
type ThermistorParams struct {
	Beta   float64 // B coefficient
	R0     float64 // resistance at T0, kΩ
	T0     float64 // reference temperature, K
	Series float64 // fixed divider resistor, kΩ
	VRef   float64 // ADC reference voltage
	ADCMax int     // full-scale ADC count
}

// DefaultThermistorParams returns a 10K NTC (B=3950) on a 10-bit, 5 V ADC.
func DefaultThermistorParams() ThermistorParams {
	return ThermistorParams{
		Beta:   3950,
		R0:     10,
		T0:     298.15,
		Series: 10,
		VRef:   5,
		ADCMax: 1023,
	}
}

// Celsius converts a raw ADC count to °C. Counts at the rails are pulled in by one step
// so an open or shorted divider still yields a finite value.
func (p ThermistorParams) Celsius(adc int) float64 {
	if adc < 1 {
		adc = 1
	}
	if adc > p.ADCMax-1 {
		adc = p.ADCMax - 1
	}
	vout := float64(adc) * (p.VRef / float64(p.ADCMax))
	rntc := (p.Series * vout) / (p.VRef - vout)
	kelvin := 1.0 / ((1.0 / p.T0) + (1.0/p.Beta)*math.Log(rntc/p.R0))
	return kelvin - 273.15
}

// ADC returns the count the divider would produce at tempC. Used by the simulated room.
func (p ThermistorParams) ADC(tempC float64) int {
	kelvin := tempC + 273.15
	rntc := p.R0 * math.Exp(p.Beta*(1/kelvin-1/p.T0))
	vout := p.VRef * rntc / (p.Series + rntc)
	adc := int(math.Round(vout * float64(p.ADCMax) / p.VRef))
	if adc < 0 {
		return 0
	}
	if adc > p.ADCMax {
		return p.ADCMax
	}
	return adc
}
