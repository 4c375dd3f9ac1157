package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/mem/cache"
)

var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "List the cache configurations that run simulates.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		only, _ := cmd.Flags().GetString("only")

		configs, err := selectConfigs(cache.DefaultConfigs(), only)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LABEL\tPOLICY\tSIZE\tWAYS")

		for _, c := range configs {
			g, err := c.Geometry()
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n",
				c.Label(), c.Policy, c.ByteSize, g.Associativity)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(configsCmd)
	configsCmd.Flags().String("only", "",
		"Only list the configurations whose label contains this text")
}

// selectConfigs keeps the configs whose label contains the filter. An empty
// filter keeps all of them.
func selectConfigs(configs []cache.Config, filter string) ([]cache.Config, error) {
	if filter == "" {
		return configs, nil
	}

	var selected []cache.Config

	for _, c := range configs {
		if strings.Contains(c.Label(), filter) {
			selected = append(selected, c)
		}
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("no cache configuration matches %q", filter)
	}

	return selected, nil
}
