package pll

import (
	"log"

	"github.com/sarchlab/caravelpll/hooking"
)

// SearchLogger is a hook that prints the progress of a Solver search.
type SearchLogger struct {
	logger *log.Logger
}

// NewSearchLogger returns a SearchLogger that writes into the logger.
func NewSearchLogger(logger *log.Logger) *SearchLogger {
	h := new(SearchLogger)

	h.logger = logger

	return h
}

// Func writes the search event into the logger.
func (h *SearchLogger) Func(ctx hooking.HookCtx) {
	evt, ok := ctx.Item.(SearchEvent)
	if !ok {
		return
	}

	prefix := ""
	if evt.RunID != "" {
		prefix = "[" + evt.RunID + "] "
	}
	if evt.Output != "" {
		prefix += string(evt.Output) + ": "
	}

	c := evt.Candidate

	switch ctx.Pos {
	case HookPosIdealCandidate:
		h.logger.Printf("%sFound a config without deviation: m=%d, d=%d",
			prefix, c.M, c.D)
	case HookPosBetterIdeal:
		h.logger.Printf("%sFound a better config: m=%d, d=%d, pllfreq=%g",
			prefix, c.M, c.D, float64(evt.PLLFreq))
	case HookPosBetterDeviating:
		h.logger.Printf(
			"%sFound a better deviating config: m=%d, d=%d, freq=%g, deviation=%g",
			prefix, c.M, c.D, float64(evt.OutFreq), float64(c.Deviation))
	case HookPosNoSolution:
		h.logger.Printf("%sNo config found for %g MHz",
			prefix, float64(evt.Target))
	}
}
