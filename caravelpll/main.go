// Command caravelpll generates a PLL configuration for the Caravel
// management core.
package main

import "github.com/sarchlab/caravelpll/caravelpll/cmd"

func main() {
	cmd.Execute()
}
