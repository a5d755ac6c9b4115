package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/linkrank/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "linkrank [FILE]",
	Short: "Estimate page ranks from link information",
	Long: `linkrank reads a list of "<source> <target>" links, one per line, and
ranks pages either by simulating random walks (stochastic) or by propagating
a probability distribution for a fixed number of rounds (distribution).

FILE defaults to standard input. The ranking is printed to stdout; stats,
timing and logs go to stderr.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runRank,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure. An interrupt
// cancels the command context, which stops ranking and telemetry tailing.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.New(os.Stdout, os.Stderr, useColor(os.Stderr)).Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .linkrank.yaml)")
	pf.String("grouping", "merge", "edge grouping: merge (by source key) or contiguous (legacy runs)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")

	bindFlag("grouping", pf.Lookup("grouping"))
	bindFlag("log_level", pf.Lookup("log-level"))
	bindFlag("log_format", pf.Lookup("log-format"))

	addRankFlags(rootCmd)
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".linkrank")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("LINKRANK")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
