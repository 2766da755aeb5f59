package main

import (
	"os"

	"github.com/nulln0ne/weighted-estimator/cmd/wpmath/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
