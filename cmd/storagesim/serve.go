package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"storage-cycles/internal/api"
	"storage-cycles/internal/config"
	"storage-cycles/internal/logger"
	"storage-cycles/internal/metrics"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.Config
			var err error
			if configPath != "" {
				cfg, err = config.Load(configPath)
			} else {
				cfg, err = config.Default()
			}
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			var sink *metrics.Sink
			if cfg.Metrics.Enabled {
				sink, err = metrics.NewSink()
				if err != nil {
					return fmt.Errorf("metrics sink: %w", err)
				}
			}

			log := logger.New("server")
			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			log.Info().Str("addr", addr).Msg("starting api server")
			return http.ListenAndServe(addr, api.NewHandler(cfg, sink))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (yaml or json)")
	return cmd
}
