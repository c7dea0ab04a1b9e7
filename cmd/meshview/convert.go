package main

import (
	"fmt"
	"io"
	"sync"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/taigrr/meshview/internal/convert"
	"github.com/taigrr/meshview/internal/session"
	"github.com/taigrr/meshview/internal/tui"
)

type convertFlags struct {
	output  string
	stride  string
	format  string
	command string
	script  string
	view    bool
}

func newConvertCmd(a *app) *cobra.Command {
	var f convertFlags
	cmd := &cobra.Command{
		Use:   "convert <buffers-dir>",
		Short: "Convert dumped vertex and index buffers to meshes",
		Long: `convert runs the configured converter on a directory of dumped buffers,
streaming its output, and lists the OBJ files it produced. With --view the
results are opened in the terminal viewer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.ErrOrStderr(), false); err != nil {
				return err
			}
			defer a.close()

			outputs, err := a.convert(cmd, args[0], f)
			if err != nil {
				return err
			}
			if !f.view || len(outputs) == 0 {
				return nil
			}

			// The terminal is about to be taken over
			a.logger.SetOutput(io.Discard)
			return tui.Run(cmd.Context(), a.newViewer(), tui.Options{
				Logger:   a.logger,
				Files:    outputs,
				Inertia:  a.cfg.Inertia,
				Watch:    true,
				Debounce: a.cfg.WatchDebounce.Duration,
			})
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "output directory (default the buffers directory)")
	fl.StringVar(&f.stride, "stride", "", "vertex stride in bytes, or auto")
	fl.StringVar(&f.format, "format", "", "output format: all, obj, gltf, fbx")
	fl.StringVar(&f.command, "command", "", "converter executable")
	fl.StringVar(&f.script, "script", "", "converter script")
	fl.BoolVar(&f.view, "view", false, "open the converted meshes")
	return cmd
}

// request builds the converter request: config values overridden by any
// flags that were set.
func (a *app) request(buffers string, f convertFlags) convert.Request {
	req := a.cfg.Converter.Request(buffers, f.output)
	if f.stride != "" {
		req.Stride = f.stride
	}
	if f.format != "" {
		req.Format = f.format
	}
	if f.command != "" {
		req.Command = f.command
	}
	if f.script != "" {
		req.Script = f.script
	}
	return req
}

func (a *app) convert(cmd *cobra.Command, buffers string, f convertFlags) ([]string, error) {
	out := cmd.OutOrStdout()
	var mu sync.Mutex
	r := &convert.Runner{
		Logger: a.logger,
		OnLine: func(l convert.Line) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintln(out, lineStyle(l.Level).Render(l.Text))
		},
	}

	res, err := r.Run(cmd.Context(), a.request(buffers, f))
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("%d meshes, %d warnings, %d errors", len(res.Outputs), res.Warnings, res.Errors)
	fmt.Fprintln(out, titleStyle.Render(summary))
	for _, p := range res.Outputs {
		fmt.Fprintln(out, p)
	}
	return res.Outputs, nil
}

func lineStyle(l convert.Level) lipgloss.Style {
	var level session.Level
	switch l {
	case convert.LevelOK:
		level = session.LevelOK
	case convert.LevelWarn:
		level = session.LevelWarn
	case convert.LevelError:
		level = session.LevelError
	default:
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(level.Color())
}
