package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlag ties a config key to a flag so that an explicitly set flag wins
// over the config file and environment.
func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", f.Name, err))
	}
}

// addRankFlags registers the ranking flags on c and binds them to viper.
func addRankFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringP("method", "m", "stochastic", "page rank algorithm: stochastic or distribution")
	f.IntP("repeats", "r", 1_000_000, "number of walks (stochastic) or propagation rounds (distribution)")
	f.IntP("steps", "s", 100, "number of steps a walker takes (stochastic)")
	f.IntP("number", "n", 20, "number of results shown (0 shows all)")
	f.Uint64("seed", 0, "random seed for reproducible walks (0 picks one from the clock)")
	f.Int("workers", 1, "goroutines to split ranking work across")
	f.String("dead-end", "fail", "walker at a page without links: fail or restart")
	f.String("dangling", "drop", "mass reaching a page without links: drop, redistribute or fail")
	f.String("telemetry", "", "append JSONL run events to this file")
	f.String("report", "", "write a TOML run report to this file")

	bindFlag("method", f.Lookup("method"))
	bindFlag("repeats", f.Lookup("repeats"))
	bindFlag("steps", f.Lookup("steps"))
	bindFlag("number", f.Lookup("number"))
	bindFlag("seed", f.Lookup("seed"))
	bindFlag("workers", f.Lookup("workers"))
	bindFlag("dead_end", f.Lookup("dead-end"))
	bindFlag("dangling", f.Lookup("dangling"))
	bindFlag("telemetry_path", f.Lookup("telemetry"))
	bindFlag("report_path", f.Lookup("report"))
}
