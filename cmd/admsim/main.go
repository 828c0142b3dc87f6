// Command admsim drives admission controllers on a simulated clock and
// prints what each worker's controller reports second by second.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
