// Package main provides the CLI entrypoint for tracer.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tracer/internal/config"
	"github.com/verte-zerg/tracer/internal/geometry"
	"github.com/verte-zerg/tracer/internal/model"
	"github.com/verte-zerg/tracer/internal/session"
	"github.com/verte-zerg/tracer/internal/statsui"
	"github.com/verte-zerg/tracer/internal/store"
	"github.com/verte-zerg/tracer/internal/tui"
)

const (
	defaultShape        = "square"
	defaultCanvasWidth  = 300.0
	defaultCanvasHeight = 300.0
	defaultCurveWindow  = 10
)

var (
	traceShape           string
	traceCanvasWidth     float64
	traceCanvasHeight    float64
	tracePathTolerance   float64
	traceProximityRadius float64
	traceCornerRadius    float64
	traceNarrator        bool

	statsShape       string
	statsSince       string
	statsLast        int
	statsCurveWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tracer",
		Short:         "TUI shape tracing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTraceCmd,
	}

	rootCmd.Flags().StringVar(&traceShape, "shape", defaultShape, "shape to trace (square or circle)")
	rootCmd.Flags().Float64Var(&traceCanvasWidth, "canvas-width", defaultCanvasWidth, "canvas width in points")
	rootCmd.Flags().Float64Var(&traceCanvasHeight, "canvas-height", defaultCanvasHeight, "canvas height in points")
	rootCmd.Flags().Float64Var(&tracePathTolerance, "path-tolerance", geometry.DefaultPathTolerance, "on-path distance band in points")
	rootCmd.Flags().Float64Var(&traceProximityRadius, "proximity-radius", geometry.DefaultProximityRadius, "near-path distance band in points")
	rootCmd.Flags().Float64Var(&traceCornerRadius, "corner-radius", geometry.DefaultCornerRadius, "corner announcement radius in points")
	rootCmd.Flags().BoolVar(&traceNarrator, "narrator", true, "enable spoken announcements")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runTraceCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "shape", &traceShape, fileCfg.Trace.Shape)
	applyFloatConfig(cmd, "canvas-width", &traceCanvasWidth, fileCfg.Trace.CanvasWidth)
	applyFloatConfig(cmd, "canvas-height", &traceCanvasHeight, fileCfg.Trace.CanvasHeight)
	applyFloatConfig(cmd, "path-tolerance", &tracePathTolerance, fileCfg.Trace.PathTolerance)
	applyFloatConfig(cmd, "proximity-radius", &traceProximityRadius, fileCfg.Trace.ProximityRadius)
	applyFloatConfig(cmd, "corner-radius", &traceCornerRadius, fileCfg.Trace.CornerRadius)
	applyBoolConfig(cmd, "narrator", &traceNarrator, fileCfg.Trace.Narrator)

	cfg := model.Config{
		Shape:           traceShape,
		CanvasWidth:     traceCanvasWidth,
		CanvasHeight:    traceCanvasHeight,
		PathTolerance:   tracePathTolerance,
		ProximityRadius: traceProximityRadius,
		CornerRadius:    traceCornerRadius,
		Narrator:        traceNarrator,
	}

	if err := validateConfig(cfg); err != nil {
		return err
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	sessCfg := session.DefaultConfig()
	sessCfg.Bands = geometry.Bands{
		PathTolerance:   cfg.PathTolerance,
		ProximityRadius: cfg.ProximityRadius,
		CornerRadius:    cfg.CornerRadius,
	}
	sess := session.New(sessCfg)

	model := tui.NewModel(cfg, st, sess)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show attempt history and coverage trends",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsShape, "shape", "", "shape filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	cfg := model.StatsConfig{
		Shape:       statsShape,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	model := statsui.NewModel(st, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tracer configuration
# Uncomment a value to enable it. CLI flags override config values.

[trace]
# shape = %q              # Shape to trace (square or circle)
# canvas-width = %.0f     # Canvas width in points
# canvas-height = %.0f    # Canvas height in points
# path-tolerance = %.0f   # On-path distance band in points
# proximity-radius = %.0f # Near-path distance band in points
# corner-radius = %.0f    # Corner announcement radius in points
# narrator = true         # Spoken announcements
`,
		defaultShape,
		defaultCanvasWidth,
		defaultCanvasHeight,
		geometry.DefaultPathTolerance,
		geometry.DefaultProximityRadius,
		geometry.DefaultCornerRadius,
	)
}

func validateConfig(cfg model.Config) error {
	if _, ok := geometry.ParseShape(cfg.Shape); !ok {
		return fmt.Errorf("--shape must be square or circle")
	}
	if cfg.CanvasWidth <= 2*geometry.InsetMargin {
		return fmt.Errorf("--canvas-width must be greater than %.0f", 2*geometry.InsetMargin)
	}
	if cfg.CanvasHeight <= 2*geometry.InsetMargin {
		return fmt.Errorf("--canvas-height must be greater than %.0f", 2*geometry.InsetMargin)
	}
	if cfg.PathTolerance <= 0 {
		return fmt.Errorf("--path-tolerance must be > 0")
	}
	if cfg.ProximityRadius <= cfg.PathTolerance {
		return fmt.Errorf("--proximity-radius must be greater than --path-tolerance")
	}
	if cfg.CornerRadius <= 0 {
		return fmt.Errorf("--corner-radius must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
