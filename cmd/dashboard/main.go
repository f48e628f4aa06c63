package main

import (
	"os"

	"github.com/Rohianon/equishare-dashboard/cmd/dashboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
