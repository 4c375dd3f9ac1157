// Package cmd provides the command-line interface of cachesim.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"
)

var logger = log.New(os.Stderr, "cachesim: ", 0)

// envFlags maps flags to the environment variables that can set their
// defaults.
var envFlags = map[string]string{
	"trace":        "CACHESIM_TRACE",
	"parallel":     "CACHESIM_PARALLEL",
	"record":       "CACHESIM_RECORD",
	"monitor-port": "CACHESIM_MONITOR_PORT",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "cachesim replays memory traces through cache models.",
	Long: `cachesim replays a trace of loads and stores through ` +
		`direct-mapped, fully-associative and set-associative caches and ` +
		`reports the hit rate of each one. Flag defaults can be set in the ` +
		`environment or in a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadDotEnv(".env"); err != nil {
			return err
		}

		return applyEnvDefaults(cmd.Flags())
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot load %s: %w", path, err)
	}

	return nil
}

// applyEnvDefaults sets every flag that was not given on the command line
// from its environment variable, if that is set.
func applyEnvDefaults(flags *pflag.FlagSet) error {
	for name, env := range envFlags {
		flag := flags.Lookup(name)
		if flag == nil || flag.Changed {
			continue
		}

		value, ok := os.LookupEnv(env)
		if !ok {
			continue
		}

		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("%s=%q: %w", env, value, err)
		}
	}

	return nil
}
