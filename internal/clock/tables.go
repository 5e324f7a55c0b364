package clock

// Master speed ratio table, /16 through x16. Index 8 is x1.
var SpeedRatios = []float64{
	1.0 / 16, 1.0 / 12, 1.0 / 8, 1.0 / 6, 1.0 / 4, 1.0 / 3, 1.0 / 2, 2.0 / 3,
	1,
	3.0 / 2, 2, 3, 4, 6, 8, 12, 16,
}

// SpeedLabels are the panel labels matching SpeedRatios.
var SpeedLabels = []string{
	"/16", "/12", "/8", "/6", "/4", "/3", "/2", "/1.5",
	"x1",
	"x1.5", "x2", "x3", "x4", "x6", "x8", "x12", "x16",
}

// DefaultSpeedIndex selects x1.
const DefaultSpeedIndex = 8

// Per-channel clock quantization ratios (x1 down to /16).
var QuantRatios = []float64{1, 1.0 / 2, 1.0 / 4, 1.0 / 8, 1.0 / 16}

// QuantLabels are the panel labels matching QuantRatios.
var QuantLabels = []string{"x1", "/2", "/4", "/8", "/16"}

// QuantDivisor returns the integer division amount for a quant ratio
// index, at least 1.
func QuantDivisor(idx int) int {
	if idx < 0 || idx >= len(QuantRatios) {
		idx = 0
	}
	d := int(1.0 / QuantRatios[idx])
	if d < 1 {
		d = 1
	}
	return d
}
