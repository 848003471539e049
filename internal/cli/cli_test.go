package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/eduplan/seatplan/pkg/errors"
)

func TestCacheDir(t *testing.T) {
	// Clear XDG_CACHE_HOME to test default behavior
	oldXdg := os.Getenv("XDG_CACHE_HOME")
	os.Unsetenv("XDG_CACHE_HOME")
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		}
	}()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	if dir == "" {
		t.Error("cacheDir() returned empty string")
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("cacheDir() = %q, should be under home %q", dir, home)
	}

	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}

	if !strings.Contains(dir, ".cache") {
		t.Errorf("cacheDir() = %q, should contain '.cache'", dir)
	}
}

func TestCacheDirStructure(t *testing.T) {
	// Clear XDG_CACHE_HOME to test default behavior
	oldXdg := os.Getenv("XDG_CACHE_HOME")
	os.Unsetenv("XDG_CACHE_HOME")
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		}
	}()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := "/tmp/custom-cache"
	oldXdg := os.Getenv("XDG_CACHE_HOME")
	os.Setenv("XDG_CACHE_HOME", customCache)
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		} else {
			os.Unsetenv("XDG_CACHE_HOME")
		}
	}()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

const testPlan = `
board = "top"

[metadata]
room = "B12"
class = "2nde 3"
generated_at = 2026-09-01T08:00:00Z

[[columns]]
id = "A"
tables = 2
seats_per_table = 2

[[occupants]]
id = "s1"
first_name = "Ada"
last_name = "Lovelace"
role = "delegate"

[[occupants]]
id = "s2"
first_name = "Alan"
last_name = "Turing"

[assignment]
"1" = "s1"
"4" = "s2"
`

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "b12.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// captureStdout redirects command output until the test ends.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

// runCLI executes the root command and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out := captureStdout(t)
	var logs bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetArgs(append(args, "--env-file", ""))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := []string{"render", "room", "layout", "credentials", "export", "serve", "session", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	plan := writePlan(t, testPlan)
	out := filepath.Join(t.TempDir(), "plans", "b12")

	printed, err := runCLI(t, "render", plan, "-f", "svg,json", "-o", out)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	for _, ext := range []string{".svg", ".json"} {
		data, err := os.ReadFile(out + ext)
		if err != nil {
			t.Fatalf("missing %s output: %v", ext, err)
		}
		if len(data) == 0 {
			t.Errorf("%s output is empty", ext)
		}
	}
	if !strings.Contains(printed, "4 seats · 2 occupied") {
		t.Errorf("render output missing stats:\n%s", printed)
	}
}

func TestRenderCommandRejectsOversizedPlan(t *testing.T) {
	plan := writePlan(t, strings.Replace(testPlan, "tables = 2", "tables = 200", 1))
	_, err := runCLI(t, "render", plan, "-f", "svg", "--no-cache", "-o", filepath.Join(t.TempDir(), "x"))
	if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("render error = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestCredentialsCommand(t *testing.T) {
	plan := writePlan(t, testPlan)
	out := filepath.Join(t.TempDir(), "cards.zip")

	printed, err := runCLI(t, "credentials", plan, "-f", "svg", "-o", out)
	if err != nil {
		t.Fatalf("credentials error: %v", err)
	}
	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Errorf("archive entries = %d, want 2", len(zr.File))
	}
	if !strings.Contains(printed, "Issued 2 credentials") {
		t.Errorf("credentials output = %q", printed)
	}

	var cached []string
	_ = filepath.WalkDir(os.Getenv("XDG_CACHE_HOME"), func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			cached = append(cached, path)
		}
		return nil
	})
	if len(cached) != 0 {
		t.Errorf("credentials left files in the cache: %v", cached)
	}
}

func TestRenderCommandConfiguredConverter(t *testing.T) {
	plan := writePlan(t, testPlan)
	out := filepath.Join(t.TempDir(), "b12")

	t.Setenv("EDUPLAN_CONVERTER", "eduplan-no-such-converter")
	_, err := runCLI(t, "render", plan, "-f", "pdf", "-o", out, "--no-cache")
	if !errors.Is(err, errors.ErrCodeRenderFailure) || !strings.Contains(err.Error(), "eduplan-no-such-converter") {
		t.Fatalf("render with configured converter error = %v", err)
	}
	if _, statErr := os.Stat(out + ".pdf"); !os.IsNotExist(statErr) {
		t.Errorf("partial PDF written: %v", statErr)
	}
}

func TestLayoutCommand(t *testing.T) {
	plan := writePlan(t, testPlan)

	printed, err := runCLI(t, "layout", plan, "--no-cache")
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	for _, want := range []string{"B12", "board top", "Ada Lovelace", "Alan Turing", "delegate", "fresh"} {
		if !strings.Contains(printed, want) {
			t.Errorf("layout output missing %q:\n%s", want, printed)
		}
	}

	withEmpty, err := runCLI(t, "layout", plan, "--no-cache", "--empty")
	if err != nil {
		t.Fatalf("layout --empty error: %v", err)
	}
	if got := strings.Count(withEmpty, iconEmpty) - strings.Count(printed, iconEmpty); got != 2 {
		t.Errorf("empty seats listed = %d, want 2", got)
	}
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		seats, occupied int
		cached          bool
		want            string
	}{
		{28, 2, false, "28 seats · 2 occupied · fresh"},
		{4, 4, true, "4 seats · 4 occupied · cached"},
		{0, 0, false, "no seats configured · fresh"},
	}
	for _, tt := range tests {
		out := captureStdout(t)
		printStats(tt.seats, tt.occupied, tt.cached)
		if got := strings.TrimSpace(out.String()); got != tt.want {
			t.Errorf("printStats(%d, %d, %v) = %q, want %q", tt.seats, tt.occupied, tt.cached, got, tt.want)
		}
	}
}

func TestCredentialsCommandNeedsSource(t *testing.T) {
	if _, err := runCLI(t, "credentials"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("credentials without source error = %v", err)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "plans/b12.toml", "plans/b12"},
		{"out/b12.pdf", "b12.toml", "out/b12"},
		{"out/b12", "b12.toml", "out/b12"},
		{"out/b12.v2", "b12.toml", "out/b12.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != "pdf" {
		t.Errorf("parseFormats(\"\") = %v", got)
	}
	if got := parseFormats("svg,xlsx"); len(got) != 2 || got[1] != "xlsx" {
		t.Errorf("parseFormats(svg,xlsx) = %v", got)
	}
}

func TestFileSafe(t *testing.T) {
	tests := map[string]string{
		"B12":       "B12",
		"B12 / Lab": "B12-Lab",
		"Salle 1.2": "Salle_1.2",
		"  ":        "plan",
		`A:\b`:      "A--b",
	}
	for in, want := range tests {
		if got := fileSafe(in); got != want {
			t.Errorf("fileSafe(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}

	paths, err := writeArtifacts(artifacts, filepath.Join(dir, "b12"), "")
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	want := []string{filepath.Join(dir, "b12.json"), filepath.Join(dir, "b12.svg")}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	single := filepath.Join(dir, "named.svg")
	paths, err = writeArtifacts(map[string][]byte{"svg": []byte("<svg/>")}, filepath.Join(dir, "named"), single)
	if err != nil || len(paths) != 1 || paths[0] != single {
		t.Errorf("single artifact paths = %v, %v", paths, err)
	}
}

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"ab/one.json", "ab/two.json", "cd/three.json"} {
		path := filepath.Join(dir, p)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	count, err := clearDir(dir)
	if err != nil || count != 3 {
		t.Fatalf("clearDir() = %d, %v, want 3", count, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("entries left after clear: %d", len(entries))
	}

	if count, err := clearDir(filepath.Join(dir, "missing")); count != 0 || err != nil {
		t.Errorf("clearDir(missing) = %d, %v", count, err)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		var out bytes.Buffer
		root := New(&bytes.Buffer{}, LogInfo).RootCommand()
		root.SetArgs([]string{"completion", shell})
		root.SetOut(&out)
		if err := root.Execute(); err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out.String(), "eduplan") {
			t.Errorf("completion %s does not mention eduplan", shell)
		}
	}
}

func TestCompleteFormats(t *testing.T) {
	got, _ := completeFormats(nil, nil, "")
	if len(got) != 5 || got[0] != "json" {
		t.Errorf("completeFormats(\"\") = %v", got)
	}
	got, _ = completeFormats(nil, nil, "svg,pdf,")
	want := []string{"svg,pdf,json", "svg,pdf,png", "svg,pdf,xlsx"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("completeFormats(svg,pdf,) = %v, want %v", got, want)
	}
}
