// Package cmd provides the command-line interface for caravelpll.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/caravelpll/pll"
	"github.com/sarchlab/caravelpll/report"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "caravelpll",
	Short: "Generate a PLL configuration for the Caravel management core.",
	Long: `Generate a PLL configuration for the Caravel management core. ` +
		`All frequencies are specified in MHz. Defaults for --clkin and the ` +
		`PLL limits can also be set through ` + envClkIn + `, ` +
		envPLLLowLimit + ` and ` + envPLLHighLimit + `, directly or in a ` +
		`.env file.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: loadEnvFile,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.SilenceUsage = true

		opts, err := configureOptions(cmd)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			atexit.Exit(1)
		}

		code := runConfigure(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if code != 0 {
			atexit.Exit(code)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().Float64P("clkin", "i",
		float64(pll.DefaultClkIn), "Frequency (MHz) of the input clock")
	rootCmd.PersistentFlags().Float64("pll-low-limit",
		float64(pll.DefaultPLLLowLimit),
		"Low limit of the allowed PLL output frequency")
	rootCmd.PersistentFlags().Float64("pll-high-limit",
		float64(pll.DefaultPLLHighLimit),
		"High limit of the allowed PLL output frequency")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose prints")
	rootCmd.PersistentFlags().String("env-file", ".env",
		"File to load default settings from, if it exists")

	rootCmd.Flags().Float64P("clkout", "o", 0,
		"Frequency (MHz) of the first output clock")
	rootCmd.Flags().Float64("clkout90", 0,
		"Frequency (MHz) of the second, 90 degrees phase shifted, output clock")
	rootCmd.Flags().Bool("allow-deviation", false,
		"Allow deviation from the requested frequencies")
	rootCmd.Flags().Bool("json", false, "Output as JSON")

	err := rootCmd.MarkFlagRequired("clkout")
	if err != nil {
		panic(err)
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

type options struct {
	req     pll.Request
	json    bool
	verbose bool
}

func configureOptions(cmd *cobra.Command) (options, error) {
	var opts options

	clkIn, pllLow, pllHigh, err := clockSettings(cmd)
	if err != nil {
		return opts, err
	}

	flags := cmd.Flags()
	clkOut, _ := flags.GetFloat64("clkout")
	clkOut90, _ := flags.GetFloat64("clkout90")
	allowDeviation, _ := flags.GetBool("allow-deviation")
	opts.json, _ = flags.GetBool("json")
	opts.verbose, _ = flags.GetBool("verbose")

	opts.req = pll.Request{
		ClkIn:          clkIn,
		ClkOut:         pll.Freq(clkOut),
		ClkOut90:       pll.Freq(clkOut90),
		PLLLow:         pllLow,
		PLLHigh:        pllHigh,
		AllowDeviation: allowDeviation,
	}

	return opts, nil
}

// runConfigure prints the configuration for opts and returns the process exit
// code.
func runConfigure(opts options, stdout, stderr io.Writer) int {
	if err := opts.req.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	builder := pll.MakeBuilder()
	if opts.verbose {
		builder = builder.WithLogger(log.New(stderr, "", 0))
	}

	result, err := builder.Build().Configure(opts.req)

	var noSolution *pll.NoSolutionError
	if errors.As(err, &noSolution) {
		fmt.Fprintf(stderr, "Failed to find a configuration for %s\n",
			noSolution.For)
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	write := report.WriteText
	if opts.json {
		write = report.WriteJSON
	}

	if err := write(stdout, result); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}
