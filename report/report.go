// Package report renders PLL configurations for people and for scripts.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sarchlab/caravelpll/pll"
)

// Document is the JSON form of a configuration.
type Document struct {
	ClkIn    float64 `json:"clkin"`
	ClkOut   float64 `json:"clkout"`
	ClkOut90 float64 `json:"clkout90"`
	FBDiv    int     `json:"fbdiv"`
	Div1     int     `json:"div1"`
	Div2     int     `json:"div2"`
	Reg0x11  uint8   `json:"reg0x11"`
	Reg0x12  uint8   `json:"reg0x12"`
}

// NewDocument converts a result into its JSON form.
func NewDocument(r pll.Result) Document {
	return Document{
		ClkIn:    float64(r.ClkIn),
		ClkOut:   float64(r.ClkOut),
		ClkOut90: float64(r.ClkOut90),
		FBDiv:    r.M,
		Div1:     r.D1,
		Div2:     r.D2,
		Reg0x11:  r.Registers.Reg0x11,
		Reg0x12:  r.Registers.Reg0x12,
	}
}

// WriteJSON writes the result as a single-line JSON object.
func WriteJSON(w io.Writer, r pll.Result) error {
	return json.NewEncoder(w).Encode(NewDocument(r))
}

// WriteText writes the human-readable summary.
func WriteText(w io.Writer, r pll.Result) error {
	_, err := fmt.Fprintf(w, `PLL Parameters:

clkin:    %s
clkout:   %s
clkout90: %s

PLL Feedback Divider: %d
PLL Output Divider 1: %d
PLL Output Divider 2: %d

Register 0x%02x: 0x%02x
Register 0x%02x: 0x%02x
`,
		r.ClkIn, r.ClkOut, r.ClkOut90,
		r.M, r.D1, r.D2,
		pll.RegOutputDividers, r.Registers.Reg0x11,
		pll.RegFeedbackDivider, r.Registers.Reg0x12,
	)

	return err
}
