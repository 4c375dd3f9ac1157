package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/sim/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a trace and report the hit rate of every cache.",
	Long: "`run --trace FILE` replays the trace through every cache " +
		"configuration and prints one hit rate per cache, followed by the " +
		"best one. The trace holds one access per line, `L` or `S` followed " +
		"by a hexadecimal address.",
	Args: cobra.NoArgs,
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringP("trace", "t", "-", "Trace file to replay, - for standard input")
	f.IntP("parallel", "p", 0,
		"Number of caches simulated at the same time, 0 for one per CPU")
	f.String("only", "",
		"Only simulate the configurations whose label contains this text")
	f.String("record", "",
		"Record the results into NAME.sqlite3")
	f.Bool("record-accesses", false,
		"Also record every access into the database given by --record")
	f.Bool("log-accesses", false, "Print every access to the standard error")
	f.Bool("monitor", false, "Serve the progress of the run over HTTP")
	f.Int("monitor-port", 0, "Port of the monitoring server, 0 for any")
	f.Bool("open-browser", false, "Open the monitoring page in a browser")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	tracePath, _ := flags.GetString("trace")
	parallel, _ := flags.GetInt("parallel")
	only, _ := flags.GetString("only")

	configs, err := selectConfigs(cache.DefaultConfigs(), only)
	if err != nil {
		return err
	}

	if tracePath == "" {
		tracePath = "-"
	}

	events, err := trace.ReadFile(tracePath)
	if err != nil {
		return err
	}

	runner := simulation.NewRunner().WithParallelism(parallel)

	dataRecorder, err := attachRecorders(cmd, runner)
	if err != nil {
		return err
	}

	if dataRecorder != nil {
		defer dataRecorder.Close()
	}

	if logAccesses, _ := flags.GetBool("log-accesses"); logAccesses {
		runner.WithHook(trace.NewLogTracer(log.New(os.Stderr, "", 0)))
	}

	if err := attachMonitor(cmd, runner); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	summary, err := runner.Run(ctx, configs, events)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		logger.Printf("trace %s has no accesses", tracePath)
	}

	return simulation.WriteReport(cmd.OutOrStdout(), summary)
}

func attachRecorders(
	cmd *cobra.Command,
	runner *simulation.Runner,
) (datarecording.DataRecorder, error) {
	record, _ := cmd.Flags().GetString("record")
	recordAccesses, _ := cmd.Flags().GetBool("record-accesses")

	if record == "" {
		if recordAccesses {
			return nil, fmt.Errorf("--record-accesses needs --record")
		}

		return nil, nil
	}

	dataRecorder, err := datarecording.New(record)
	if err != nil {
		return nil, err
	}

	runner.WithResultRecorder(simulation.NewResultRecorder(dataRecorder))

	if recordAccesses {
		runner.WithHook(trace.NewDBTracer(dataRecorder))
	}

	return dataRecorder, nil
}

func attachMonitor(cmd *cobra.Command, runner *simulation.Runner) error {
	enabled, _ := cmd.Flags().GetBool("monitor")
	port, _ := cmd.Flags().GetInt("monitor-port")
	openBrowser, _ := cmd.Flags().GetBool("open-browser")

	if !enabled {
		if openBrowser {
			return fmt.Errorf("--open-browser needs --monitor")
		}

		return nil
	}

	m := monitoring.NewMonitor().WithPortNumber(port)

	url, err := m.StartServer()
	if err != nil {
		return err
	}

	runner.WithMonitor(m)

	if openBrowser {
		if err := browser.OpenURL(url); err != nil {
			logger.Printf("cannot open browser: %v", err)
		}
	}

	return nil
}
