// Package convert runs the external buffer-to-mesh converter, streams its
// output, and finds the mesh files it produced.
package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Converter argument defaults.
const (
	StrideAuto    = "auto"
	FormatAll     = "all"
	OutputName    = "output.obj"
	maxOutputLine = 64 * 1024
)

// Formats accepted by the converter.
var Formats = []string{FormatAll, "obj", "gltf", "fbx"}

// Errors returned by Request.Validate and Runner.Run.
var (
	ErrNoBuffers        = errors.New("buffer directory does not exist")
	ErrNoCommand        = errors.New("no converter command configured")
	ErrNoScript         = errors.New("converter script does not exist")
	ErrBadFormat        = errors.New("unknown output format")
	ErrConversionFailed = errors.New("conversion failed")
)

// Level classifies a converter output line.
type Level int

const (
	LevelInfo Level = iota
	LevelOK
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelOK:
		return "ok"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Classify tags a line by the markers the converter prints. Errors win
// over success, success over warnings.
func Classify(line string) Level {
	switch {
	case strings.Contains(line, "[ERR]") || strings.Contains(line, "Error"):
		return LevelError
	case strings.Contains(line, "[OK]") || strings.Contains(line, "Termine"):
		return LevelOK
	case strings.Contains(line, "[WARN]") || strings.Contains(line, "SKIP"):
		return LevelWarn
	default:
		return LevelInfo
	}
}

// Line is one non-empty line of converter output.
type Line struct {
	Text  string
	Level Level
}

// Request describes one conversion.
type Request struct {
	Command string   // Executable, e.g. python3
	Script  string   // Optional script passed as the first argument
	Args    []string // Extra arguments placed before the generated ones
	Buffers string   // Directory holding the dumped index and vertex buffers
	Output  string   // Output directory; defaults to Buffers
	Stride  string   // Vertex stride in bytes, or "auto"
	Format  string   // One of Formats; defaults to "all"
}

// Validate checks the request and fills defaults.
func (r *Request) Validate() error {
	if r.Command == "" {
		return ErrNoCommand
	}
	if info, err := os.Stat(r.Buffers); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoBuffers, r.Buffers)
	}
	if r.Script != "" {
		if info, err := os.Stat(r.Script); err != nil || info.IsDir() {
			return fmt.Errorf("%w: %s", ErrNoScript, r.Script)
		}
	}
	if r.Output == "" {
		r.Output = r.Buffers
	}
	if r.Stride == "" {
		r.Stride = StrideAuto
	}
	if r.Format == "" {
		r.Format = FormatAll
	}
	valid := false
	for _, f := range Formats {
		if r.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: %q", ErrBadFormat, r.Format)
	}
	return nil
}

// OutputFile is the primary mesh file the converter is asked to write.
func (r Request) OutputFile() string {
	return filepath.Join(r.Output, OutputName)
}

// Argv returns the converter command line. The stride is only passed when
// it is not "auto".
func (r Request) Argv() []string {
	argv := []string{r.Command}
	if r.Script != "" {
		argv = append(argv, r.Script)
	}
	argv = append(argv, r.Args...)
	argv = append(argv,
		"--buffers", r.Buffers,
		"--output", r.OutputFile(),
		"--format", r.Format,
	)
	if r.Stride != "" && r.Stride != StrideAuto {
		argv = append(argv, "--stride", r.Stride)
	}
	return argv
}

// Result summarizes a finished conversion.
type Result struct {
	Outputs  []string // .obj files in the output directory, sorted
	Lines    int
	Warnings int
	Errors   int
	ExitCode int
}

// Runner executes conversions.
type Runner struct {
	Logger *log.Logger
	OnLine func(Line) // Called from a pump goroutine for every output line
}

// Run executes req, streaming stdout and stderr through OnLine, and on a
// zero exit status lists the produced meshes. Cancelling ctx kills the
// process.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	var res Result
	if err := req.Validate(); err != nil {
		return res, err
	}

	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	argv := req.Argv()
	logger.Info("starting converter", "command", filepath.Base(argv[0]), "buffers", req.Buffers, "output", req.Output)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer pr.Close()
		return r.pump(gctx, pr, &res, logger)
	})
	g.Go(func() error {
		err := cmd.Run()
		pw.Close()
		return err
	})

	err := g.Wait()
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil {
		if ctx.Err() != nil {
			return res, fmt.Errorf("converter cancelled: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Error("converter failed", "exit", res.ExitCode)
			return res, fmt.Errorf("%w: exit status %d", ErrConversionFailed, res.ExitCode)
		}
		return res, fmt.Errorf("run converter: %w", err)
	}

	outputs, err := FindOutputs(req.Output)
	if err != nil {
		return res, err
	}
	res.Outputs = outputs
	logger.Info("conversion finished", "outputs", len(outputs), "warnings", res.Warnings, "errors", res.Errors)
	return res, nil
}

func (r *Runner) pump(ctx context.Context, rd io.Reader, res *Result, logger *log.Logger) error {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 4096), maxOutputLine)

	for sc.Scan() {
		if ctx.Err() != nil {
			// Keep draining so the process never blocks on a full pipe
			continue
		}
		text := strings.TrimRight(sc.Text(), " \t\r")
		if text == "" {
			continue
		}

		line := Line{Text: text, Level: Classify(text)}
		res.Lines++
		switch line.Level {
		case LevelWarn:
			res.Warnings++
		case LevelError:
			res.Errors++
		}
		logger.Debug("converter", "level", line.Level, "line", text)

		if r.OnLine != nil {
			r.OnLine(line)
		}
	}
	return sc.Err()
}

// FindOutputs lists the .obj files directly inside dir, sorted by path.
func FindOutputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}

	var objs []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".obj") {
			continue
		}
		objs = append(objs, filepath.Join(dir, e.Name()))
	}
	sort.Strings(objs)
	return objs, nil
}
