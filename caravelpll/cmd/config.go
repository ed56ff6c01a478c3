package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/caravelpll/pll"
	"github.com/spf13/cobra"
)

// Environment variables that replace the built-in flag defaults.
const (
	envClkIn        = "CARAVEL_PLL_CLKIN"
	envPLLLowLimit  = "CARAVEL_PLL_LOW_LIMIT"
	envPLLHighLimit = "CARAVEL_PLL_HIGH_LIMIT"
)

// loadEnvFile loads the --env-file into the environment. Variables already
// set are kept. A missing file is not an error.
func loadEnvFile(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// clockSettings resolves clkin and the PLL limits. An explicit flag wins over
// the environment, which wins over the flag default.
func clockSettings(cmd *cobra.Command) (clkIn, pllLow, pllHigh pll.Freq, err error) {
	if clkIn, err = freqSetting(cmd, "clkin", envClkIn); err != nil {
		return
	}

	if pllLow, err = freqSetting(cmd, "pll-low-limit", envPLLLowLimit); err != nil {
		return
	}

	pllHigh, err = freqSetting(cmd, "pll-high-limit", envPLLHighLimit)

	return
}

func freqSetting(cmd *cobra.Command, flag, env string) (pll.Freq, error) {
	flags := cmd.Flags()

	if !flags.Changed(flag) {
		if v, ok := os.LookupEnv(env); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return 0, fmt.Errorf("%s: %w", env, err)
			}

			return pll.Freq(f), nil
		}
	}

	f, err := flags.GetFloat64(flag)
	if err != nil {
		return 0, err
	}

	return pll.Freq(f), nil
}
