package pll

import (
	"math"

	"github.com/sarchlab/caravelpll/hooking"
)

// Search bounds. The feedback divider register is 5 bits wide and the output
// divider fields are 3 bits wide; zero is not a usable value in either.
const (
	MinMultiplier = 1
	MaxMultiplier = 1<<5 - 1
	MinDivider    = 1
	MaxDivider    = 1<<3 - 1
)

// Hook positions raised by the Solver. The Item of every hook is a
// SearchEvent.
var (
	// HookPosIdealCandidate fires for every pair that hits the target
	// exactly.
	HookPosIdealCandidate = &hooking.HookPos{Name: "IdealCandidate"}

	// HookPosBetterIdeal fires when an exact pair closer to the center of the
	// PLL range replaces the current best.
	HookPosBetterIdeal = &hooking.HookPos{Name: "BetterIdeal"}

	// HookPosBetterDeviating fires when a pair with a smaller deviation
	// replaces the current best.
	HookPosBetterDeviating = &hooking.HookPos{Name: "BetterDeviating"}

	// HookPosNoSolution fires when the search gives up.
	HookPosNoSolution = &hooking.HookPos{Name: "NoSolution"}
)

// Input describes one search.
type Input struct {
	ClkIn   Freq
	Target  Freq
	PLLLow  Freq
	PLLHigh Freq

	// FixedM pins the feedback multiplier. Zero leaves it free.
	FixedM int

	// AllowDeviation accepts the closest pair when no pair is exact.
	AllowDeviation bool

	// RunID and Output only tag hook events.
	RunID  string
	Output Output
}

// Config is the multiplier and divider chosen for one output.
type Config struct {
	M int
	D int
}

// Candidate is an (m, d) pair whose PLL frequency is inside the lock range.
type Candidate struct {
	M         int
	D         int
	Deviation Freq
}

// SearchEvent is the item carried by Solver hooks.
type SearchEvent struct {
	RunID     string
	Output    Output
	Target    Freq
	Candidate Candidate

	// PLLFreq is clkin*m; OutFreq is clkin*m/d.
	PLLFreq Freq
	OutFreq Freq
}

// A Solver finds the best feedback multiplier and output divider for a
// single output frequency.
type Solver struct {
	*hooking.HookableBase
}

// NewSolver creates a Solver without hooks.
func NewSolver() *Solver {
	return &Solver{
		HookableBase: hooking.NewHookableBase(),
	}
}

// Solve searches every (m, d) pair whose PLL frequency clkin*m lies inside
// [PLLLow, PLLHigh].
//
// Among pairs that produce the target exactly, the one whose PLL frequency
// is closest to the center of the range wins. If there is none and
// AllowDeviation is set, the pair with the smallest absolute deviation wins.
// Ties go to the pair found first, iterating m then d in ascending order.
// The second return value is false when no pair qualifies.
func (s *Solver) Solve(in Input) (Config, bool) {
	candidates, ideal := s.search(in)

	if best, ok := s.closestToCenter(in, ideal); ok {
		return best, true
	}

	if in.AllowDeviation {
		if best, ok := s.leastDeviation(in, candidates); ok {
			return best, true
		}
	}

	s.invoke(HookPosNoSolution, in, Candidate{})

	return Config{}, false
}

func (s *Solver) search(in Input) (candidates, ideal []Candidate) {
	mMin, mMax := multiplierRange(in.FixedM)

	for m := mMin; m <= mMax; m++ {
		multiplied := in.ClkIn.Multiply(m)
		if multiplied < in.PLLLow || multiplied > in.PLLHigh {
			continue
		}

		for d := MinDivider; d <= MaxDivider; d++ {
			divided := multiplied.Divide(d)
			c := Candidate{M: m, D: d, Deviation: divided - in.Target}
			candidates = append(candidates, c)

			// Exact float comparison, no tolerance.
			if divided == in.Target {
				ideal = append(ideal, c)
				s.invoke(HookPosIdealCandidate, in, c)
			}
		}
	}

	return candidates, ideal
}

func multiplierRange(fixedM int) (int, int) {
	if fixedM == 0 {
		return MinMultiplier, MaxMultiplier
	}

	if fixedM < MinMultiplier || fixedM > MaxMultiplier {
		return 1, 0
	}

	return fixedM, fixedM
}

func (s *Solver) closestToCenter(
	in Input,
	ideal []Candidate,
) (Config, bool) {
	center := in.PLLLow + (in.PLLHigh-in.PLLLow)/2

	var (
		best     Config
		bestDist float64
		found    bool
	)

	for _, c := range ideal {
		dist := math.Abs(float64(in.ClkIn.Multiply(c.M) - center))
		if !found || dist < bestDist {
			best = Config{M: c.M, D: c.D}
			bestDist = dist
			found = true

			s.invoke(HookPosBetterIdeal, in, c)
		}
	}

	return best, found
}

func (s *Solver) leastDeviation(
	in Input,
	candidates []Candidate,
) (Config, bool) {
	var (
		best    Config
		bestDev float64
		found   bool
	)

	for _, c := range candidates {
		dev := math.Abs(float64(c.Deviation))
		if !found || dev < bestDev {
			best = Config{M: c.M, D: c.D}
			bestDev = dev
			found = true

			s.invoke(HookPosBetterDeviating, in, c)
		}
	}

	return best, found
}

func (s *Solver) invoke(pos *hooking.HookPos, in Input, c Candidate) {
	if s.NumHooks() == 0 {
		return
	}

	evt := SearchEvent{
		RunID:     in.RunID,
		Output:    in.Output,
		Target:    in.Target,
		Candidate: c,
	}

	if c.M != 0 {
		evt.PLLFreq = in.ClkIn.Multiply(c.M)
		evt.OutFreq = evt.PLLFreq.Divide(c.D)
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   evt,
	})
}
