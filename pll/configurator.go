package pll

import (
	"fmt"

	"github.com/sarchlab/caravelpll/idgen"
)

// Defaults of the Caravel management core clocking.
const (
	DefaultClkIn        Freq = 10 * MHz
	DefaultPLLLowLimit  Freq = 90 * MHz
	DefaultPLLHighLimit Freq = 214 * MHz
)

// Request describes the clocks wanted from the PLL.
type Request struct {
	ClkIn  Freq
	ClkOut Freq

	// ClkOut90 is the 90 degree output. Zero means the same as ClkOut.
	ClkOut90 Freq

	PLLLow  Freq
	PLLHigh Freq

	AllowDeviation bool
}

// Validate rejects requests the Configurator is not defined for.
func (r Request) Validate() error {
	fields := []struct {
		name string
		freq Freq
	}{
		{"clkin", r.ClkIn},
		{"clkout", r.ClkOut},
		{"clkout90", r.ClkOut90},
		{"pll low limit", r.PLLLow},
		{"pll high limit", r.PLLHigh},
	}

	for _, f := range fields {
		if !f.freq.IsValid() {
			return fmt.Errorf("%w: %s must be a finite, non-negative number, got %g",
				ErrInvalidRequest, f.name, float64(f.freq))
		}
	}

	if r.ClkIn == 0 {
		return fmt.Errorf("%w: clkin must be positive", ErrInvalidRequest)
	}

	if r.PLLLow > r.PLLHigh {
		return fmt.Errorf("%w: pll low limit %g is above high limit %g",
			ErrInvalidRequest, float64(r.PLLLow), float64(r.PLLHigh))
	}

	return nil
}

// Result is a complete PLL configuration.
type Result struct {
	RunID string

	ClkIn Freq

	// ClkOut and ClkOut90 are the frequencies actually produced.
	ClkOut   Freq
	ClkOut90 Freq

	// M is the feedback divider, D1 and D2 the output dividers.
	M  int
	D1 int
	D2 int

	Registers RegisterPair
}

// PLLFreq returns the frequency the PLL runs at before output division.
func (r Result) PLLFreq() Freq {
	return r.ClkIn.Multiply(r.M)
}

// A Configurator derives the configuration of both PLL outputs.
type Configurator struct {
	solver *Solver
	ids    idgen.Generator
}

// Solver returns the Solver used for both outputs, so that hooks can be
// attached to it.
func (c *Configurator) Solver() *Solver {
	return c.solver
}

// Configure finds the multiplier for clkout, then the divider for clkout90
// with that multiplier held fixed, since a single PLL feeds both output
// dividers.
func (c *Configurator) Configure(req Request) (Result, error) {
	runID := c.ids.Generate()

	clkOut90 := req.ClkOut90
	if clkOut90 == 0 {
		clkOut90 = req.ClkOut
	}

	primary, ok := c.solver.Solve(Input{
		ClkIn:          req.ClkIn,
		Target:         req.ClkOut,
		PLLLow:         req.PLLLow,
		PLLHigh:        req.PLLHigh,
		AllowDeviation: req.AllowDeviation,
		RunID:          runID,
		Output:         OutputClkOut,
	})
	if !ok {
		return Result{}, &NoSolutionError{For: OutputClkOut, Target: req.ClkOut}
	}

	secondary, ok := c.solver.Solve(Input{
		ClkIn:          req.ClkIn,
		Target:         clkOut90,
		PLLLow:         req.PLLLow,
		PLLHigh:        req.PLLHigh,
		FixedM:         primary.M,
		AllowDeviation: req.AllowDeviation,
		RunID:          runID,
		Output:         OutputClkOut90,
	})
	if !ok {
		return Result{}, &NoSolutionError{For: OutputClkOut90, Target: clkOut90}
	}

	pllFreq := req.ClkIn.Multiply(primary.M)

	return Result{
		RunID:     runID,
		ClkIn:     req.ClkIn,
		ClkOut:    pllFreq.Divide(primary.D),
		ClkOut90:  pllFreq.Divide(secondary.D),
		M:         primary.M,
		D1:        primary.D,
		D2:        secondary.D,
		Registers: Encode(primary.D, secondary.D, primary.M),
	}, nil
}
