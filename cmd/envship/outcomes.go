package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/bft-labs/envship/internal/cliconfig"
	"github.com/bft-labs/envship/pkg/outcome"
)

func newOutcomesCommand(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "outcomes",
		Short: "Print the shared discard counters stored in Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}
			if cfg.RedisAddr == "" {
				return errors.New("redis-addr is required")
			}

			rdb, err := newRedisClient(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer rdb.Close()

			return printTotals(cmd.Context(), cmd.OutOrStdout(), rdb, cfg.RedisPrefix)
		},
	}
}

// printTotals writes one "key\tcount" line per counter, sorted by key.
func printTotals(ctx context.Context, out io.Writer, rdb redis.Cmdable, prefix string) error {
	totals, err := outcome.NewRedisRecorder(rdb, outcome.WithRedisPrefix(prefix)).Totals(ctx)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(out, "%s\t%d\n", k, totals[k]); err != nil {
			return err
		}
	}
	return nil
}
