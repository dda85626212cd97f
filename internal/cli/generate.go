package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"forge3d/internal/generation"
)

func newHealthCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the generation service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newClient(e.cfg).Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "status: %s\nworker: %s\n", h.Status, h.WorkerID)
			return nil
		},
	}
}

func newGenerateCmd(e *env) *cobra.Command {
	var texture bool
	gen := &cobra.Command{Use: "generate", Short: "Generate a 3D model", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("generate requires a subcommand: text|image")
	}}
	gen.PersistentFlags().BoolVar(&texture, "texture", false, "Ask the service to texture the model")

	text := &cobra.Command{
		Use:     "text <prompt>",
		Short:   "Generate from a text prompt",
		Example: "  forge3d generate text \"a red cube\" --texture",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), e, generation.Input{Mode: generation.ModeText, Text: args[0], Texture: texture})
		},
	}
	image := &cobra.Command{
		Use:     "image <path>",
		Short:   "Generate from a photo",
		Example: "  forge3d generate image ./chair.jpg",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			return runGenerate(cmd.Context(), e, generation.Input{Mode: generation.ModeImage, Image: b, Texture: texture})
		},
	}
	gen.AddCommand(text, image)
	return gen
}

// runGenerate drives one job in the foreground. Ctrl+C cancels it.
func runGenerate(ctx context.Context, e *env, in generation.Input) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStores(ctx, e.cfg, e.log)
	if err != nil {
		return err
	}
	defer s.Close()
	mgr, err := newManager(context.Background(), e.cfg, newClient(e.cfg), s, e.log)
	if err != nil {
		return err
	}
	defer mgr.Close()

	events, unsubscribe := mgr.Subscribe()
	defer unsubscribe()
	if err := mgr.Start(ctx, in); err != nil {
		return err
	}

	last := ""
	for {
		select {
		case <-ctx.Done():
			mgr.Cancel()
			fmt.Fprintln(e.errOut, "canceled")
			return generation.ErrCanceled
		case ev, ok := <-events:
			if !ok {
				return generation.ErrCanceled
			}
			j := ev.Snapshot.Job
			switch ev.Name {
			case generation.EventSubmitting, generation.EventPolling, generation.EventProgress:
				line := fmt.Sprintf("%3.0f%% %s", j.Progress*100, j.Message)
				if line != last {
					fmt.Fprintln(e.out, line)
					last = line
				}
			case generation.EventCompleted:
				fmt.Fprintf(e.out, "100%% %s\nsaved %s (history %s)\n", j.Message, j.ResultPath, j.HistoryID)
				return nil
			case generation.EventFailed:
				return errors.New(ev.Snapshot.Error)
			case generation.EventCanceled:
				return generation.ErrCanceled
			}
		}
	}
}
