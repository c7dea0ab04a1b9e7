package convert

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Level
	}{
		{"[ERR] buffer missing", LevelError},
		{"Error: bad stride", LevelError},
		{"[OK] wrote output.obj", LevelOK},
		{"Conversion Termine", LevelOK},
		{"[WARN] odd vertex count", LevelWarn},
		{"SKIP vb1", LevelWarn},
		{"[OK] but SKIP and Error", LevelError},
		{"[OK] with SKIP", LevelOK},
		{"reading buffers", LevelInfo},
		{"error in lower case", LevelInfo},
	}

	for _, tc := range tests {
		if got := Classify(tc.line); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestArgv(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "auto stride omitted",
			req:  Request{Command: "python3", Script: "conv.py", Buffers: "/b", Output: "/o", Stride: "auto", Format: "all"},
			want: []string{"python3", "conv.py", "--buffers", "/b", "--output", filepath.Join("/o", "output.obj"), "--format", "all"},
		},
		{
			name: "explicit stride",
			req:  Request{Command: "conv", Buffers: "/b", Output: "/o", Stride: "40", Format: "gltf"},
			want: []string{"conv", "--buffers", "/b", "--output", filepath.Join("/o", "output.obj"), "--format", "gltf", "--stride", "40"},
		},
		{
			name: "extra args first",
			req:  Request{Command: "conv", Args: []string{"-v"}, Buffers: "/b", Output: "/o", Format: "obj"},
			want: []string{"conv", "-v", "--buffers", "/b", "--output", filepath.Join("/o", "output.obj"), "--format", "obj"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.req.Argv(); !slices.Equal(got, tc.want) {
				t.Errorf("Argv() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "conv.py")
	if err := os.WriteFile(script, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	req := Request{Command: "python3", Script: script, Buffers: dir}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if req.Output != dir || req.Stride != StrideAuto || req.Format != FormatAll {
		t.Errorf("defaults not applied: %+v", req)
	}

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"no command", Request{Buffers: dir}, ErrNoCommand},
		{"missing buffers", Request{Command: "x", Buffers: filepath.Join(dir, "nope")}, ErrNoBuffers},
		{"buffers is a file", Request{Command: "x", Buffers: script}, ErrNoBuffers},
		{"missing script", Request{Command: "x", Script: filepath.Join(dir, "nope.py"), Buffers: dir}, ErrNoScript},
		{"bad format", Request{Command: "x", Buffers: dir, Format: "stl"}, ErrBadFormat},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.req.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestFindOutputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.obj", "a.obj", "notes.txt", "C.OBJ"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.obj"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindOutputs(dir)
	if err != nil {
		t.Fatalf("FindOutputs: %v", err)
	}
	want := []string{
		filepath.Join(dir, "C.OBJ"),
		filepath.Join(dir, "a.obj"),
		filepath.Join(dir, "b.obj"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("FindOutputs() = %q, want %q", got, want)
	}

	if _, err := FindOutputs(filepath.Join(dir, "missing")); err == nil {
		t.Error("FindOutputs(missing) succeeded")
	}
}

func shell(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not found")
	}
	return sh
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conv.sh")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// The fake converter receives: --buffers B --output O --format F
const fakeConverter = `
out_dir=$(dirname "$4")
echo "reading $2"
echo "[WARN] odd index count"
echo "SKIP vb2" 1>&2
echo ""
echo "o part" > "$4"
echo "o other" > "$out_dir/a_part.obj"
echo "[OK] Termine"
`

func TestRunSuccess(t *testing.T) {
	sh := shell(t)
	buffers := t.TempDir()
	out := t.TempDir()

	var mu sync.Mutex
	var lines []Line
	r := &Runner{OnLine: func(l Line) {
		mu.Lock()
		lines = append(lines, l)
		mu.Unlock()
	}}

	res, err := r.Run(context.Background(), Request{
		Command: sh,
		Script:  writeScript(t, fakeConverter),
		Buffers: buffers,
		Output:  out,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantOutputs := []string{filepath.Join(out, "a_part.obj"), filepath.Join(out, "output.obj")}
	if !slices.Equal(res.Outputs, wantOutputs) {
		t.Errorf("Outputs = %q, want %q", res.Outputs, wantOutputs)
	}
	if res.Lines != 4 || res.Warnings != 2 || res.Errors != 0 {
		t.Errorf("Result = %+v, want 4 lines, 2 warnings, 0 errors", res)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(lines) != 4 {
		t.Fatalf("OnLine saw %d lines, want 4", len(lines))
	}
	if last := lines[len(lines)-1]; last.Level != LevelOK {
		t.Errorf("last line %q level = %v, want ok", last.Text, last.Level)
	}
}

func TestRunFailure(t *testing.T) {
	sh := shell(t)
	r := &Runner{}
	res, err := r.Run(context.Background(), Request{
		Command: sh,
		Script:  writeScript(t, "echo '[ERR] no buffers found'\nexit 3\n"),
		Buffers: t.TempDir(),
	})
	if !errors.Is(err, ErrConversionFailed) {
		t.Fatalf("Run err = %v, want ErrConversionFailed", err)
	}
	if res.ExitCode != 3 || res.Errors != 1 {
		t.Errorf("Result = %+v, want exit 3 and 1 error", res)
	}
	if len(res.Outputs) != 0 {
		t.Errorf("failed run listed outputs %q", res.Outputs)
	}
}

func TestRunCancel(t *testing.T) {
	sh := shell(t)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	r := &Runner{}
	start := time.Now()
	_, err := r.Run(ctx, Request{
		Command: sh,
		Script:  writeScript(t, "exec sleep 10\n"),
		Buffers: t.TempDir(),
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("cancelled run did not stop the process")
	}
}
