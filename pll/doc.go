// Package pll computes divider settings for the PLL that clocks the Caravel
// management core.
//
// The PLL multiplies clkin by the feedback divider and feeds two output
// dividers, one without phase shift and one shifted by 90 degrees:
//
//	clkin -> PLL -> no phase shift -> output divider 1 -> clkout
//	             \-> phase shift 90 -> output divider 2 -> clkout90
//
// A Solver searches the feedback multiplier and output divider space for a
// single output. A Configurator runs the Solver for both outputs, sharing the
// multiplier between them, and encodes the result into the housekeeping
// registers 0x11 and 0x12.
package pll
