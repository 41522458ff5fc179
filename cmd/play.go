package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vibe-studio/internal/dialog"
	"github.com/ziadkadry99/vibe-studio/internal/progress"
)

var playSpeed string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Replay the active page as if it were being typed",
	Long: `Clears the active page and retypes its content one character at a time,
saving as it goes. Speed runs from 1 (slowest) to 100 (fastest); without
--speed you are prompted. Interrupting stops the replay and keeps what has
been typed so far.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ws, err := openWorkspace(ctx)
		if err != nil {
			return err
		}
		defer ws.Close()

		page, found := ws.shell.Pages().Active()
		if !found {
			return fmt.Errorf("no active page to replay")
		}

		var p dialog.Prompter = dialog.Terminal{}
		if playSpeed != "" {
			p = dialog.Fixed(playSpeed)
		}
		started, err := ws.shell.StartPlayback(ctx, p)
		if err != nil {
			return err
		}
		if !started {
			fmt.Fprintln(cmd.OutOrStdout(), "Playback not started.")
			return nil
		}

		reporter := progress.NewReporter("Typing " + page.Name)
		err = waitForPlayback(ctx, ws, reporter)
		reporter.Finish()
		return err
	},
}

// waitForPlayback mirrors the engine's progress until it returns to idle.
// Cancelling ctx stops the run.
func waitForPlayback(ctx context.Context, ws *workspace, r progress.Reporter) error {
	engine := ws.shell.Engine()
	r.Start(engine.State().Total)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			ws.shell.StopPlayback()
			st := engine.State()
			fmt.Fprintf(os.Stderr, "\nStopped after %d of %d characters.\n", st.Revealed, st.Total)
			return nil
		case <-ticker.C:
			st := engine.State()
			r.Update(st.Revealed, ws.shell.Editor().Label)
			if !st.Typing() {
				return nil
			}
		}
	}
}

func init() {
	playCmd.Flags().StringVar(&playSpeed, "speed", "", "typing speed from 1 to 100")
	rootCmd.AddCommand(playCmd)
}
