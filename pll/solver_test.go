package pll

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/caravelpll/hooking"
)

func caravelInput(clkIn, target Freq) Input {
	return Input{
		ClkIn:   clkIn,
		Target:  target,
		PLLLow:  DefaultPLLLowLimit,
		PLLHigh: DefaultPLLHighLimit,
	}
}

// idealPairs lists every exact pair by brute force, independent of the
// Solver.
func idealPairs(in Input) []Config {
	var pairs []Config

	for m := MinMultiplier; m <= MaxMultiplier; m++ {
		pllFreq := in.ClkIn * Freq(m)
		if pllFreq < in.PLLLow || pllFreq > in.PLLHigh {
			continue
		}

		for d := MinDivider; d <= MaxDivider; d++ {
			if pllFreq/Freq(d) == in.Target {
				pairs = append(pairs, Config{M: m, D: d})
			}
		}
	}

	return pairs
}

var _ = Describe("Solver", func() {
	var (
		mockCtrl *gomock.Controller
		solver   *Solver
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		solver = NewSolver()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should pick the exact pair closest to the center of the range", func() {
		// Both m=10,d=1 and m=20,d=2 give 100 MHz. 200 is closer to 152.
		config, ok := solver.Solve(caravelInput(10, 100))

		Expect(ok).To(BeTrue())
		Expect(config).To(Equal(Config{M: 20, D: 2}))
	})

	It("should pick the only pair near the center", func() {
		config, ok := solver.Solve(Input{
			ClkIn: 10, Target: 10, PLLLow: 20, PLLHigh: 40,
		})

		Expect(ok).To(BeTrue())
		Expect(config).To(Equal(Config{M: 3, D: 3}))
	})

	It("should keep the first exact pair on equal distance", func() {
		// 20 and 30 are both 5 away from 25.
		config, ok := solver.Solve(Input{
			ClkIn: 10, Target: 10, PLLLow: 20, PLLHigh: 30,
		})

		Expect(ok).To(BeTrue())
		Expect(config).To(Equal(Config{M: 2, D: 2}))
	})

	It("should not find a solution without deviation", func() {
		// 10*m/d == 48 needs m=24, d=5, and 240 MHz is above the limit.
		_, ok := solver.Solve(caravelInput(10, 48))

		Expect(ok).To(BeFalse())
	})

	It("should fall back to the least deviating pair", func() {
		in := caravelInput(10, 48)
		in.AllowDeviation = true

		config, ok := solver.Solve(in)

		Expect(ok).To(BeTrue())
		Expect(config).To(Equal(Config{M: 19, D: 4}))
	})

	It("should keep the first pair on equal deviation", func() {
		// m=1 only; d=1 gives 10 and d=2 gives 5, both 2.5 away.
		config, ok := solver.Solve(Input{
			ClkIn: 10, Target: 7.5, PLLLow: 10, PLLHigh: 10,
			AllowDeviation: true,
		})

		Expect(ok).To(BeTrue())
		Expect(config).To(Equal(Config{M: 1, D: 1}))
	})

	It("should prefer an exact pair over deviating pairs", func() {
		in := caravelInput(10, 100)
		in.AllowDeviation = true

		config, ok := solver.Solve(in)

		Expect(ok).To(BeTrue())
		Expect(config).To(Equal(Config{M: 20, D: 2}))
	})

	It("should include both ends of the PLL range", func() {
		config, ok := solver.Solve(Input{
			ClkIn: 10, Target: 90, PLLLow: 90, PLLHigh: 90,
		})
		Expect(ok).To(BeTrue())
		Expect(config).To(Equal(Config{M: 9, D: 1}))

		config, ok = solver.Solve(Input{
			ClkIn: 10, Target: 70, PLLLow: 200, PLLHigh: 210,
		})
		Expect(ok).To(BeTrue())
		Expect(config).To(Equal(Config{M: 21, D: 3}))
	})

	It("should never use a divider of 8", func() {
		// 10*16/8 = 20 would be exact, but 8 does not fit the register.
		_, ok := solver.Solve(Input{
			ClkIn: 10, Target: 20, PLLLow: 160, PLLHigh: 160,
		})

		Expect(ok).To(BeFalse())
	})

	It("should find nothing when the range is empty", func() {
		in := Input{
			ClkIn: 10, Target: 100, PLLLow: 101, PLLHigh: 109,
			AllowDeviation: true,
		}

		_, ok := solver.Solve(in)

		Expect(ok).To(BeFalse())
	})

	Context("with a fixed multiplier", func() {
		It("should only search dividers", func() {
			in := caravelInput(10, 50)
			in.FixedM = 15

			config, ok := solver.Solve(in)

			Expect(ok).To(BeTrue())
			Expect(config).To(Equal(Config{M: 15, D: 3}))
		})

		It("should ignore better multipliers", func() {
			in := caravelInput(10, 100)
			in.FixedM = 10

			config, ok := solver.Solve(in)

			Expect(ok).To(BeTrue())
			Expect(config).To(Equal(Config{M: 10, D: 1}))
		})

		It("should fail when the multiplier leaves the range", func() {
			in := caravelInput(10, 50)
			in.FixedM = 5
			in.AllowDeviation = true

			_, ok := solver.Solve(in)

			Expect(ok).To(BeFalse())
		})

		It("should fail when the multiplier does not fit the register", func() {
			in := Input{
				ClkIn: 1, Target: 32, PLLLow: 0, PLLHigh: 1000,
				FixedM: 32, AllowDeviation: true,
			}

			_, ok := solver.Solve(in)

			Expect(ok).To(BeFalse())
		})

		It("should deviate only over dividers", func() {
			in := caravelInput(10, 100)
			in.FixedM = 15
			in.AllowDeviation = true

			config, ok := solver.Solve(in)

			Expect(ok).To(BeTrue())
			Expect(config).To(Equal(Config{M: 15, D: 2}))
		})
	})

	Context("over a sweep of inputs", func() {
		clkIns := []Freq{4, 5, 7.5, 10, 12, 12.5, 25, 27}
		targets := []Freq{10, 12.5, 20, 25, 30, 33, 40, 48, 50, 60, 75, 100}
		ranges := [][2]Freq{{90, 214}, {50, 300}, {100, 150}, {0, 1000}}

		forEachInput := func(f func(in Input)) {
			for _, clkIn := range clkIns {
				for _, target := range targets {
					for _, r := range ranges {
						f(Input{
							ClkIn: clkIn, Target: target,
							PLLLow: r[0], PLLHigh: r[1],
						})
					}
				}
			}
		}

		It("should find an exact pair whenever one exists", func() {
			forEachInput(func(in Input) {
				pairs := idealPairs(in)
				config, ok := solver.Solve(in)

				Expect(ok).To(Equal(len(pairs) > 0), "%+v", in)
				if ok {
					Expect(pairs).To(ContainElement(config), "%+v", in)
				}
			})
		})

		It("should keep the PLL frequency closest to the center", func() {
			forEachInput(func(in Input) {
				config, ok := solver.Solve(in)
				if !ok {
					return
				}

				center := in.PLLLow + (in.PLLHigh-in.PLLLow)/2
				chosen := math.Abs(float64(in.ClkIn*Freq(config.M) - center))
				for _, p := range idealPairs(in) {
					other := math.Abs(float64(in.ClkIn*Freq(p.M) - center))
					Expect(other).To(BeNumerically(">=", chosen), "%+v", in)
				}
			})
		})

		It("should minimize deviation when falling back", func() {
			forEachInput(func(in Input) {
				if len(idealPairs(in)) > 0 {
					return
				}

				in.AllowDeviation = true
				config, ok := solver.Solve(in)
				Expect(ok).To(BeTrue(), "%+v", in)

				chosen := math.Abs(float64(
					in.ClkIn*Freq(config.M)/Freq(config.D) - in.Target))
				for m := MinMultiplier; m <= MaxMultiplier; m++ {
					pllFreq := in.ClkIn * Freq(m)
					if pllFreq < in.PLLLow || pllFreq > in.PLLHigh {
						continue
					}
					for d := MinDivider; d <= MaxDivider; d++ {
						dev := math.Abs(float64(pllFreq/Freq(d) - in.Target))
						Expect(dev).To(BeNumerically(">=", chosen), "%+v", in)
					}
				}
			})
		})

		It("should stay inside the register bounds and the PLL range", func() {
			forEachInput(func(in Input) {
				in.AllowDeviation = true
				config, ok := solver.Solve(in)
				if !ok {
					return
				}

				Expect(config.M).To(BeNumerically(">=", MinMultiplier))
				Expect(config.M).To(BeNumerically("<=", MaxMultiplier))
				Expect(config.D).To(BeNumerically(">=", MinDivider))
				Expect(config.D).To(BeNumerically("<=", MaxDivider))
				Expect(in.ClkIn * Freq(config.M)).To(
					And(BeNumerically(">=", in.PLLLow), BeNumerically("<=", in.PLLHigh)))
			})
		})

		It("should be deterministic", func() {
			forEachInput(func(in Input) {
				in.AllowDeviation = true
				c1, ok1 := solver.Solve(in)
				c2, ok2 := NewSolver().Solve(in)

				Expect(ok2).To(Equal(ok1))
				Expect(c2).To(Equal(c1))
			})
		})
	})

	Context("with hooks", func() {
		var hook *MockHook

		BeforeEach(func() {
			hook = NewMockHook(mockCtrl)
			solver.AcceptHook(hook)
		})

		It("should report exact pairs and improvements", func() {
			var positions []*hooking.HookPos
			var pairs []Config

			hook.EXPECT().Func(gomock.Any()).
				Do(func(ctx hooking.HookCtx) {
					evt := ctx.Item.(SearchEvent)
					Expect(ctx.Domain).To(BeIdenticalTo(solver))
					positions = append(positions, ctx.Pos)
					pairs = append(pairs,
						Config{M: evt.Candidate.M, D: evt.Candidate.D})
				}).
				Times(4)

			solver.Solve(caravelInput(10, 100))

			Expect(positions).To(Equal([]*hooking.HookPos{
				HookPosIdealCandidate,
				HookPosIdealCandidate,
				HookPosBetterIdeal,
				HookPosBetterIdeal,
			}))
			Expect(pairs).To(Equal([]Config{
				{M: 10, D: 1}, {M: 20, D: 2}, {M: 10, D: 1}, {M: 20, D: 2},
			}))
		})

		It("should report deviating improvements", func() {
			var last SearchEvent

			hook.EXPECT().Func(gomock.Any()).
				Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosBetterDeviating))
					last = ctx.Item.(SearchEvent)
				}).
				MinTimes(1)

			in := caravelInput(10, 48)
			in.AllowDeviation = true
			in.RunID = "7"
			in.Output = OutputClkOut
			solver.Solve(in)

			Expect(last.RunID).To(Equal("7"))
			Expect(last.Output).To(Equal(OutputClkOut))
			Expect(last.Candidate.M).To(Equal(19))
			Expect(last.Candidate.D).To(Equal(4))
			Expect(last.PLLFreq).To(Equal(Freq(190)))
			Expect(last.OutFreq).To(Equal(Freq(47.5)))
			Expect(last.Candidate.Deviation).To(Equal(Freq(-0.5)))
		})

		It("should report giving up", func() {
			hook.EXPECT().Func(gomock.Any()).
				Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosNoSolution))
					Expect(ctx.Item.(SearchEvent).Target).To(Equal(Freq(48)))
				})

			solver.Solve(caravelInput(10, 48))
		})
	})
})
