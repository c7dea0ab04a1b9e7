// meshview - 3D mesh viewer for the terminal and the desktop.
//
// Controls:
//
//	Left drag   - Rotate (yaw/pitch)
//	Right drag  - Pan
//	Wheel, +/-  - Zoom
//	Arrows/WASD - Rotate
//	R           - Reset view
//	Shift+R     - Reload the current file
//	N/P, Tab    - Next/previous file
//	Q, Esc      - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/meshview/internal/config"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// app carries the global flags and what they resolve to.
type app struct {
	configPath string
	logLevel   string
	logFile    string

	cfg     config.Config
	logger  *log.Logger
	logSink io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var vf viewFlags

	root := &cobra.Command{
		Use:   "meshview [file...]",
		Short: "View OBJ and glTF meshes in the terminal",
		Long: `meshview renders triangle meshes as flat-shaded polygons with a mouse-driven
orbit camera. Several files can be given and cycled with n and p.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd, args, vf)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFile, "log-file", "", "write logs to this file")

	vf.register(root)

	root.AddCommand(
		newWindowCmd(a),
		newRenderCmd(a),
		newInfoCmd(a),
		newConvertCmd(a),
	)
	return root
}

// setup loads the config and creates the logger. Interactive terminal
// commands log nowhere unless --log-file is given, since stderr shares the
// screen.
func (a *app) setup(stderr io.Writer, interactive bool) error {
	path, optional := a.configPath, false
	if path == "" {
		path, optional = config.DefaultPath(), true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := log.ParseLevel(a.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
	}

	var w io.Writer = stderr
	switch {
	case a.logFile != "":
		f, err := os.OpenFile(a.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logSink = f
		w = f
	case interactive:
		w = io.Discard
	}

	a.logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "meshview",
		ReportTimestamp: a.logFile != "",
	})
	return nil
}

func (a *app) close() {
	if a.logSink != nil {
		a.logSink.Close()
		a.logSink = nil
	}
}
