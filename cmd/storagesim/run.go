package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storage-cycles/internal/api/models"
	"storage-cycles/internal/config"
	"storage-cycles/internal/cycles"
	"storage-cycles/internal/data"
	"storage-cycles/internal/logger"
	"storage-cycles/internal/simulate"
)

func runCmd() *cobra.Command {
	var (
		loadPath    string
		requestPath string
		presetPath  string
		pointsPath  string
		resample    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one cycles simulation from files",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New("run")

			raw, err := os.ReadFile(requestPath)
			if err != nil {
				return fmt.Errorf("read request: %w", err)
			}
			var req models.SimulateRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("parse request: %w", err)
			}

			if loadPath != "" {
				samples, err := data.LoadFile(loadPath)
				if err != nil {
					return fmt.Errorf("load series: %w", err)
				}
				req.Samples = samples
			}
			if resample {
				req.Samples = data.Resample15m(req.Samples)
			}
			if presetPath != "" {
				preset, err := config.LoadPreset(presetPath)
				if err != nil {
					return fmt.Errorf("load preset: %w", err)
				}
				req.Storage = config.MergeStorage(preset, req.Storage)
			}
			if err := req.Validate(); err != nil {
				return err
			}

			prices := req.PriceTable()
			engine := simulate.New(req.Storage, req.MonthlySchedule(), req.Rules(), prices)
			res, err := engine.Run(req.Samples)
			if err != nil {
				return err
			}
			summary := cycles.Aggregate(res, req.Storage, prices)

			log.Info().
				Int("points", len(res.Points)).
				Float64("annualized_cycles", summary.Year.AnnualizedCycles).
				Float64("profit", summary.Year.Profit.Profit).
				Msg("simulation finished")

			if pointsPath != "" {
				if err := simulate.WritePointsCSV(pointsPath, res.Points); err != nil {
					return fmt.Errorf("write points: %w", err)
				}
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	cmd.Flags().StringVarP(&loadPath, "load", "l", "", "load series file (csv or json), overrides request samples")
	cmd.Flags().StringVarP(&requestPath, "request", "r", "", "simulation request file (json)")
	cmd.Flags().StringVarP(&presetPath, "preset", "p", "", "storage preset file (yaml), request fields override it")
	cmd.Flags().StringVar(&pointsPath, "points", "", "write per-interval points to this csv")
	cmd.Flags().BoolVar(&resample, "resample", false, "resample input onto a 15-minute grid")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}
