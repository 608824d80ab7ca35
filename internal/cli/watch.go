package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotsetgreg/claimcheck/internal/model"
	"github.com/dotsetgreg/claimcheck/internal/monitor"
	"github.com/dotsetgreg/claimcheck/internal/pipeline"
)

var (
	watchNoVerify bool
	watchUseDiff  bool
	watchDebounce time.Duration
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <logfile>",
	Short: "Watch an agent session log and verify claims as they appear",
	Long: `Watch tails a session log (JSON-lines transcript or plain text),
extracts claims from assistant messages as they are appended, and
verifies each new claim against the codebase.

Claims already present in the log at startup are recorded but not
re-verified. Stop with Ctrl-C; a session summary is printed on exit.

Example:
  claimcheck watch ~/.agent/session.jsonl
  claimcheck watch session.log --use-diff -d ./src`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchNoVerify, "no-auto-verify", false, "detect claims without verifying them")
	watchCmd.Flags().BoolVar(&watchUseDiff, "use-diff", false, "verify against the git change set instead of a plain search")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "file-change debounce window (config default when zero)")
	addSearchFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if watchNoVerify {
		cfg.Monitor.AutoVerify = false
	}
	if watchUseDiff {
		cfg.Monitor.UseDiff = true
	}
	if watchDebounce > 0 {
		cfg.Monitor.Debounce = watchDebounce
	}

	p := pipeline.New(cfg)
	m, err := p.NewMonitor(args[0], workDir)
	if err != nil {
		return err
	}

	if err := m.Start(cmd.Context()); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	for {
		select {
		case <-sig:
			fmt.Fprintln(os.Stderr, "\nStopping...")
			m.Stop()
			printWatchStats(m.Stats())
			return nil

		case ev, ok := <-m.Events():
			if !ok {
				printWatchStats(m.Stats())
				return nil
			}
			printWatchEvent(p, ev)
		}
	}
}

func printWatchEvent(p *pipeline.Pipeline, ev monitor.Event) {
	switch ev.Kind {
	case monitor.EventReady:
		fmt.Fprintln(os.Stderr, "Watching for claims...")

	case monitor.EventClaimDetected:
		fmt.Printf("claim: %s  (%s)\n", ev.Claim.Claim.Raw, ev.Claim.Timestamp.Format("15:04:05"))

	case monitor.EventVerified:
		switch result := ev.Claim.Result.(type) {
		case *model.VerificationResult:
			p.Renderer().PrintVerification(result)
		case *model.DiffVerificationResult:
			p.Renderer().PrintDiff(result)
		}

	case monitor.EventError:
		fmt.Fprintf(os.Stderr, "Warning: %v\n", ev.Err)
	}
}

func printWatchStats(stats monitor.Stats) {
	fmt.Printf("\nSession: %d claims detected, %d verified, %d pending\n",
		stats.ClaimsDetected, stats.ClaimsVerified, stats.ClaimsPending)
}
