package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storage-cycles/internal/economics"
)

func econCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "econ",
		Short: "Evaluate project economics from an input file",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			var in economics.Input
			if err := json.Unmarshal(raw, &in); err != nil {
				return fmt.Errorf("parse input: %w", err)
			}
			res, err := economics.Compute(in)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "economics input file (json)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
