package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "storagesim",
		Short: "TOU battery-storage cycle and economics simulator",
	}
	root.AddCommand(serveCmd(), runCmd(), econCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
