package cmd

import (
	"fmt"
	"log"

	"github.com/sarchlab/caravelpll/server"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve PLL configurations over HTTP",
	Long: `Serve PLL configurations over HTTP. GET /api/config takes the ` +
		`same settings as the command line as query parameters.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.SilenceUsage = true

		s, err := newServer(cmd)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			atexit.Exit(1)
		}

		err = s.ListenAndServe()
		if err != nil {
			log.Printf("Error serving: %v", err)
			atexit.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0,
		"Port to listen on; a random port is used when not set")
	rootCmd.AddCommand(serveCmd)
}

func newServer(cmd *cobra.Command) (*server.Server, error) {
	clkIn, pllLow, pllHigh, err := clockSettings(cmd)
	if err != nil {
		return nil, err
	}

	port, _ := cmd.Flags().GetInt("port")
	verbose, _ := cmd.Flags().GetBool("verbose")

	s := server.NewServer().
		WithPortNumber(port).
		WithDefaults(clkIn, pllLow, pllHigh)

	if verbose {
		s.WithLogger(log.New(cmd.ErrOrStderr(), "", log.LstdFlags))
	}

	return s, nil
}
