package cmd

import (
	"context"
	"log/slog"

	"github.com/jpfielding/dicomuid/pkg/server"
	"github.com/spf13/cobra"
)

// NewServeCmd runs the HTTP UID service
func NewServeCmd(ctx context.Context) *cobra.Command {
	def := server.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve UIDs over HTTP",
		Long:  "Serves GET /uid, /uid?count=N, /uid/{uuid}, /healthz and /metrics until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := def
			cfg.Addr, _ = cmd.Flags().GetString("addr")
			cfg.Rate, _ = cmd.Flags().GetFloat64("rate")
			cfg.Burst, _ = cmd.Flags().GetInt("burst")
			cfg.MaxBatch, _ = cmd.Flags().GetInt("max-batch")
			cfg.ShutdownTimeout, _ = cmd.Flags().GetDuration("shutdown-timeout")
			return server.Run(ctx, cfg, slog.Default())
		},
	}
	pf := cmd.PersistentFlags()
	pf.String("addr", def.Addr, "listen address")
	pf.Float64("rate", def.Rate, "requests per second allowed per client (<= 0 disables)")
	pf.Int("burst", def.Burst, "per client burst")
	pf.Int("max-batch", def.MaxBatch, "largest count accepted by /uid")
	pf.Duration("shutdown-timeout", def.ShutdownTimeout, "graceful shutdown timeout")
	return cmd
}
