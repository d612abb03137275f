package insight

import (
	"math"

	"resonanceAPI/internal/window"
	"resonanceAPI/utils"
)

const minPearsonPairs = 3

// Pearson returns the correlation coefficient of two aligned series. ok is
// false when there are fewer than 3 pairs or the lengths differ. A series
// with no variance correlates with nothing, so it yields 0.
func Pearson(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < minPearsonPairs {
		return 0, false
	}

	mx, my := window.Mean(x), window.Mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, true
	}

	r := sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) {
		return 0, true
	}
	return utils.Clamp(r, -1, 1), true
}
