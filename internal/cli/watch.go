package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	apperrors "github.com/ariel-frischer/relnotes/internal/errors"
)

// watchDebounce coalesces editor write bursts into one re-render.
const watchDebounce = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render the changelog whenever the manifest changes",
	Long: `Watch the release manifest and re-render the changelog on every change.

Useful while hand-editing releases.yaml: keep this running in a terminal and
the configured output file stays current. Stop with Ctrl+C.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd)
	},
}

func init() {
	watchCmd.GroupID = GroupWorkflows
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&renderManifestFlag, "manifest", "", "Path to the release manifest (overrides config)")
}

func runWatch(cmd *cobra.Command) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	manifestPath := cfg.ManifestPath
	if renderManifestFlag != "" {
		manifestPath = renderManifestFlag
	}
	if _, err := os.Stat(manifestPath); err != nil {
		return apperrors.NewPrerequisiteError(
			fmt.Sprintf("release manifest not found at %s", manifestPath),
			"Run 'relnotes collect' to build one from git history")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save,
	// which drops a file-level watch.
	if err := watcher.Add(filepath.Dir(manifestPath)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(manifestPath), err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rerender := func() {
		if err := runRender(cmd); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Render failed: %v\n", err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s at %s\n",
			manifestPath, time.Now().Format("15:04:05"))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", manifestPath)
	rerender()

	return watchLoop(ctx, watcher, manifestPath, rerender)
}

// watchLoop dispatches manifest change events to rerender, debounced.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, manifestPath string, rerender func()) error {
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(manifestPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			rerender()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			return fmt.Errorf("watching manifest: %w", err)
		}
	}
}
