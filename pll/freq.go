package pll

import (
	"fmt"
	"math"
)

// Freq defines the type of frequency. The unit is MHz, which is the unit the
// Caravel housekeeping documentation and the command line use.
type Freq float64

// Defines the unit of frequency
const (
	KHz Freq = 1e-3
	MHz Freq = 1
	GHz Freq = 1e3
)

// Hz returns the frequency in Hertz.
func (f Freq) Hz() float64 {
	return float64(f) * 1e6
}

// Multiply returns the PLL frequency produced by feedback multiplier m.
func (f Freq) Multiply(m int) Freq {
	return f * Freq(m)
}

// Divide returns the frequency after an output divider d.
func (f Freq) Divide(d int) Freq {
	if d == 0 {
		panic("divider cannot be 0")
	}

	return f / Freq(d)
}

// IsValid reports whether f is a finite, non-negative number.
func (f Freq) IsValid() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// String formats the frequency the way the summary report prints it.
func (f Freq) String() string {
	return fmt.Sprintf("%.2f MHz", float64(f))
}
