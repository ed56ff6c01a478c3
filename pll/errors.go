package pll

import (
	"errors"
	"fmt"
)

// ErrNoSolution is matched by every NoSolutionError.
var ErrNoSolution = errors.New("no PLL configuration")

// ErrInvalidRequest is wrapped by the errors Request.Validate returns.
var ErrInvalidRequest = errors.New("invalid PLL request")

// Output names one of the two PLL outputs.
type Output string

// The two outputs of the PLL.
const (
	OutputClkOut   Output = "clkout"
	OutputClkOut90 Output = "clkout90"
)

// NoSolutionError indicates that no multiplier and divider combination can
// produce the requested frequency on an output.
type NoSolutionError struct {
	For    Output
	Target Freq
}

func (e *NoSolutionError) Error() string {
	return fmt.Sprintf("failed to find a configuration for %s (%s)",
		e.For, e.Target)
}

// Is makes errors.Is(err, ErrNoSolution) hold.
func (e *NoSolutionError) Is(target error) bool {
	return target == ErrNoSolution
}
