package pll

import "fmt"

// Housekeeping register addresses that hold the PLL configuration.
const (
	RegOutputDividers  = 0x11
	RegFeedbackDivider = 0x12
)

const (
	dividerBits    = 3
	dividerMask    = 1<<dividerBits - 1
	multiplierMask = 1<<5 - 1
)

// RegisterPair holds the values to write into registers 0x11 and 0x12.
//
// Reg0x11 packs output divider 1 in bits 2:0 and output divider 2 in bits
// 5:3. Reg0x12 holds the feedback divider in bits 4:0.
type RegisterPair struct {
	Reg0x11 uint8
	Reg0x12 uint8
}

// Encode packs two output dividers and the feedback multiplier into the
// register pair. Arguments outside the search bounds violate the solver's
// contract and panic.
func Encode(d1, d2, m int) RegisterPair {
	dividerMustBeInRange(d1)
	dividerMustBeInRange(d2)
	multiplierMustBeInRange(m)

	return RegisterPair{
		Reg0x11: uint8((d1 & dividerMask) | ((d2 & dividerMask) << dividerBits)),
		Reg0x12: uint8(m & multiplierMask),
	}
}

// Decode recovers the output dividers and the feedback multiplier.
func (p RegisterPair) Decode() (d1, d2, m int) {
	d1 = int(p.Reg0x11) & dividerMask
	d2 = (int(p.Reg0x11) >> dividerBits) & dividerMask
	m = int(p.Reg0x12) & multiplierMask

	return d1, d2, m
}

func dividerMustBeInRange(d int) {
	if d < MinDivider || d > MaxDivider {
		panic(fmt.Sprintf("output divider %d out of range [%d, %d]",
			d, MinDivider, MaxDivider))
	}
}

func multiplierMustBeInRange(m int) {
	if m < MinMultiplier || m > MaxMultiplier {
		panic(fmt.Sprintf("feedback multiplier %d out of range [%d, %d]",
			m, MinMultiplier, MaxMultiplier))
	}
}
