package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jpfielding/dicomuid/pkg/uid"
	"github.com/spf13/cobra"
)

// NewGenerateCmd issues fresh UIDs from random UUIDs
func NewGenerateCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "generate random UUID derived UIDs",
		Long:  "Draws version 4 UUIDs and prints the 2.25.<decimal> UID derived from each.",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			format, _ := cmd.Flags().GetString("format")
			if err := checkFormat(format); err != nil {
				return err
			}
			if count < 1 {
				return fmt.Errorf("count must be positive, got %d", count)
			}
			if pool, _ := cmd.Flags().GetBool("rand-pool"); pool {
				uid.EnableRandPool()
			}
			slog.DebugContext(ctx, "generating uids", "count", count, "format", format)

			out := cmd.OutOrStdout()
			if format == "text" {
				// stream straight to the output, no records needed
				w := bufio.NewWriter(out)
				if err := uid.BatchTo(w, count, "\n"); err != nil {
					return fmt.Errorf("failed to write uid: %w", err)
				}
				return w.Flush()
			}
			recs := make([]Record, count)
			for i := range recs {
				u := uuid.New()
				recs[i] = Record{UUID: u.String(), UID: uid.Encode(u)}
			}
			return writeRecords(out, format, recs)
		},
	}
	pf := cmd.PersistentFlags()
	pf.IntP("count", "n", 1, "number of UIDs to generate")
	pf.StringP("format", "f", "text", "output format (text|json|yaml)")
	pf.Bool("rand-pool", false, "use a buffered random pool for faster bulk generation")
	return cmd
}
