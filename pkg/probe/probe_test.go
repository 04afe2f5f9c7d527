package probe

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"strings"
	"testing"
)

type fakeTool struct {
	path   string
	output string
	runErr error
}

type fakeTarget struct {
	tools   map[string]fakeTool
	lookErr error
	runs    []string
}

func (f *fakeTarget) Label() string { return "fake" }

func (f *fakeTarget) LookPath(ctx context.Context, tool string) (string, bool, error) {
	if f.lookErr != nil {
		return "", false, f.lookErr
	}
	ft, ok := f.tools[tool]
	if !ok || ft.path == "" {
		return "", false, nil
	}
	return ft.path, true, nil
}

func (f *fakeTarget) Run(ctx context.Context, argv ...string) (string, error) {
	f.runs = append(f.runs, strings.Join(argv, " "))
	ft, ok := f.tools[argv[0]]
	if !ok {
		return "", &exec.Error{Name: argv[0], Err: exec.ErrNotFound}
	}
	return ft.output, ft.runErr
}

func standardTarget() *fakeTarget {
	return &fakeTarget{tools: map[string]fakeTool{
		"cmake":   {path: "/usr/local/bin/cmake", output: "cmake version 3.28.1\n\nCMake suite maintained and supported by Kitware (kitware.com/cmake).\n"},
		"ruby":    {path: "/usr/bin/ruby", output: "ruby 3.1.2p20 (2022-04-12 revision 4491bb740a) [x86_64-linux-gnu]\n"},
		"gcc":     {path: "/usr/bin/gcc", output: "gcc (Ubuntu 11.4.0-1ubuntu1~22.04) 11.4.0\nCopyright (C) 2021 Free Software Foundation, Inc.\n"},
		"pyenv":   {path: "/root/.pyenv/bin/pyenv", output: "pyenv 2.3.36\n"},
		"weird":   {path: "/usr/bin/weird", output: "no-version-here\n"},
		"silent":  {path: "/usr/bin/silent", output: ""},
		"crashes": {path: "/usr/bin/crashes", runErr: errors.New("exit status 2")},
	}}
}

func TestProbeEndToEnd(t *testing.T) {
	target := standardTarget()
	p := NewProber([]string{"cmake"}, Options{})

	results, err := p.Probe(context.Background(), target)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	rec, ok := results[0].Record()
	if !ok {
		t.Fatalf("result not resolved: %+v", results[0])
	}
	want := Record{Name: "cmake", Path: "/usr/local/bin/cmake", Version: "3.28.1"}
	if rec != want {
		t.Errorf("Record() = %+v, want %+v", rec, want)
	}
	if !reflect.DeepEqual(target.runs, []string{"cmake --version"}) {
		t.Errorf("runs = %v", target.runs)
	}
}

func TestProbePreservesOrderAndDuplicates(t *testing.T) {
	tools := []string{"ruby", "cmake", "ruby", "gcc", "pyenv"}
	p := NewProber(tools, Options{})

	results, err := p.Probe(context.Background(), standardTarget())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if len(results) != len(tools) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(tools))
	}
	for i, res := range results {
		if res.Name != tools[i] {
			t.Errorf("results[%d].Name = %q, want %q", i, res.Name, tools[i])
		}
		if res.Status != StatusResolved {
			t.Errorf("results[%d].Status = %v", i, res.Status)
		}
	}
	if results[0].Version != "3.1.2" || results[3].Version != "11.4.0" {
		t.Errorf("unexpected versions: %+v", results)
	}
}

func TestProbeStrictAbortsOnMissingVersion(t *testing.T) {
	p := NewProber([]string{"cmake", "weird", "gcc"}, Options{})
	target := standardTarget()

	results, err := p.Probe(context.Background(), target)
	if err == nil {
		t.Fatal("Probe() expected error for tool without version")
	}
	if results != nil {
		t.Errorf("results = %+v, want none on failure", results)
	}
	var verr *VersionError
	if !errors.As(err, &verr) || verr.Tool != "weird" || verr.Line != "no-version-here" {
		t.Errorf("error = %v, want VersionError for weird", err)
	}
	for _, run := range target.runs {
		if strings.HasPrefix(run, "gcc") {
			t.Error("probing continued after the first failure")
		}
	}
}

func TestProbeStrictAbortsOnMissingTool(t *testing.T) {
	p := NewProber([]string{"cmake", "conan"}, Options{})

	_, err := p.Probe(context.Background(), standardTarget())
	if err == nil {
		t.Fatal("Probe() expected error for missing tool")
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("error = %v, want exec.ErrNotFound in chain", err)
	}
	if !strings.Contains(err.Error(), "fake") {
		t.Errorf("error %q should name the target", err.Error())
	}
}

func TestProbeKeepGoing(t *testing.T) {
	p := NewProber([]string{"cmake", "conan", "weird", "silent", "crashes", "gcc"}, Options{KeepGoing: true})

	results, err := p.Probe(context.Background(), standardTarget())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	want := []Status{StatusResolved, StatusNotFound, StatusNoVersion, StatusNoVersion, StatusFailed, StatusResolved}
	if len(results) != len(want) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(want))
	}
	for i, res := range results {
		if res.Status != want[i] {
			t.Errorf("results[%d] (%s).Status = %v, want %v", i, res.Name, res.Status, want[i])
		}
		if _, ok := res.Record(); ok != (want[i] == StatusResolved) {
			t.Errorf("results[%d].Record() ok = %v", i, ok)
		}
	}
	if results[2].FirstLine != "no-version-here" {
		t.Errorf("FirstLine = %q, want raw text kept", results[2].FirstLine)
	}
	if results[1].Path != "" {
		t.Errorf("missing tool path = %q, want empty", results[1].Path)
	}
}

func TestProbeLookupError(t *testing.T) {
	target := standardTarget()
	target.lookErr = errors.New("docker exec failed")

	_, err := NewProber([]string{"cmake"}, Options{}).Probe(context.Background(), target)
	if !errors.Is(err, target.lookErr) {
		t.Errorf("error = %v, want lookup error", err)
	}
}

func TestProbeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProber([]string{"cmake"}, Options{KeepGoing: true}).Probe(ctx, standardTarget())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestProberToolsIsACopy(t *testing.T) {
	tools := []string{"cmake", "ruby"}
	p := NewProber(tools, Options{})
	tools[0] = "changed"

	got := p.Tools()
	if got[0] != "cmake" {
		t.Errorf("Tools()[0] = %q, prober must not alias the caller's slice", got[0])
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusResolved:  "resolved",
		StatusNotFound:  "not found",
		StatusNoVersion: "no version",
		StatusFailed:    "error",
		Status(42):      "status(42)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
