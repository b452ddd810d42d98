package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wilbur182/flowfiler/internal/app"
	"github.com/wilbur182/flowfiler/internal/config"
	"github.com/wilbur182/flowfiler/internal/styles"
	"github.com/wilbur182/flowfiler/internal/version"
)

var (
	configPath string
	debugFlag  bool
	noRestore  bool

	rootCmd = &cobra.Command{
		Use:   "flowfiler [dir]",
		Short: "Multi-pane flow file manager",
		Long: `flowfiler browses folders as flows: selecting folders in one pane
shows their contents in the next pane of the lane.`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "log at debug level to stderr")
	rootCmd.Flags().BoolVar(&noRestore, "no-restore", false, "start with a fresh workspace instead of the saved session")

	rootCmd.AddCommand(versionCmd, sessionCmd, favoritesCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(config.ExpandPath(configPath))
	}
	return config.Load()
}

// newLogger writes to stderr with --debug, else to a log file next to
// the config. The TUI owns the terminal, so stderr is only safe when the
// user redirects it.
func newLogger() (*slog.Logger, io.Closer, error) {
	if debugFlag {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(config.Dir(), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(config.Dir(), "flowfiler.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})), f, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, closer, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer closer.Close()

	styles.ApplyTheme(cfg.UI.Theme.Name, cfg.UI.Theme.Overrides)

	opts := app.Options{
		Config:  cfg,
		Logger:  logger,
		Watch:   true,
		Restore: !noRestore && len(args) == 0,
	}
	if len(args) == 1 {
		dir, err := filepath.Abs(config.ExpandPath(args[0]))
		if err != nil {
			return err
		}
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			return fmt.Errorf("not a folder: %s", args[0])
		}
		opts.StartDir = dir
	}

	model := app.New(opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithReportFocus())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running application: %w", err)
	}

	// Quit saves on its own; this covers ctrl+c and signals.
	if m, ok := final.(app.Model); ok {
		if err := m.SaveSession(); err != nil {
			logger.Warn("session save failed", "error", err)
		}
		m.Close()
	}
	logger.Info("exited", "version", version.Effective(version.Version))
	return nil
}
