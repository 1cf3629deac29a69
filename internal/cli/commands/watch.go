package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/openfga-dslc/openfga-dslc/internal/compiler/cache"
	"github.com/openfga-dslc/openfga-dslc/internal/compiler/serializer"
	"github.com/openfga-dslc/openfga-dslc/internal/watch"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file|dir>",
		Short: "Recompile .fga sources automatically on change",
		Long: `Watch one .fga file, or every .fga file under a directory, and
recompile it whenever it changes.

watch is OS-event-driven (fsnotify) rather than polling: saves are
debounced by 100ms so a burst of writes from an editor still triggers a
single recompile.`,
		Example: `  fgac watch model.fga
  fgac watch ./models`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	target := args[0]

	banner := color.New(color.FgCyan, color.Bold)
	info := color.New(color.FgWhite)
	errColor := color.New(color.FgRed, color.Bold)
	okColor := color.New(color.FgGreen)

	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("failed to stat %s: %w", target, err)
	}

	coordinator := cache.NewCompilationCoordinator()

	compileOnce := func(paths []string) {
		for _, p := range paths {
			coordinator.InvalidateFile(p)
		}

		results, _, err := coordinator.CompileFiles(paths, len(paths) > 1)
		if err != nil {
			errColor.Printf("watch: %v\n", err)
			return
		}

		for _, result := range results {
			if result.Err != nil {
				errColor.Printf("%s: %v\n", result.Path, result.Err)
				continue
			}

			outPath := result.Path[:len(result.Path)-len(".fga")] + ".json"
			data, err := serializer.SerializeIndent(result.Document)
			if err != nil {
				errColor.Printf("%s: %v\n", result.Path, err)
				continue
			}
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				errColor.Printf("%s: %v\n", outPath, err)
				continue
			}
			okColor.Printf("%s -> %s\n", result.Path, outPath)
		}
	}

	initialPaths := []string{target}
	if targetInfo, err := os.Stat(target); err == nil && targetInfo.IsDir() {
		initialPaths, err = cache.ScanDirectory(target)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", target, err)
		}
	}
	compileOnce(initialPaths)

	fw, err := watch.NewFileWatcher(target, func(files []string) error {
		compileOnce(files)
		return nil
	}, func(err error) {
		errColor.Printf("watch: %v\n", err)
	})
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fw.Start(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	fmt.Println()
	banner.Println("fgac watch")
	info.Printf("  watching: %s\n", target)
	fmt.Println()
	color.New(color.FgYellow).Println("Press Ctrl+C to stop")
	fmt.Println()

	<-sigChan

	fmt.Println("\nShutting down...")
	if err := fw.Stop(); err != nil {
		errColor.Printf("watch: error stopping watcher: %v\n", err)
	}
	okColor.Println("Goodbye!")

	return nil
}
