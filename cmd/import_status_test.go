package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"icecatimport/internal/usecase/recurringimport"
)

type fakeStatusReader struct {
	current *recurringimport.StatusView
	last    *recurringimport.StatusView
}

func (f fakeStatusReader) CurrentRun(context.Context) (recurringimport.StatusView, bool, error) {
	if f.current == nil {
		return recurringimport.StatusView{}, false, nil
	}
	return *f.current, true, nil
}

func (f fakeStatusReader) LastRun(context.Context) (recurringimport.StatusView, bool, error) {
	if f.last == nil {
		return recurringimport.StatusView{}, false, nil
	}
	return *f.last, true, nil
}

func (f fakeStatusReader) Status(ctx context.Context) (recurringimport.StatusView, bool, error) {
	if view, ok, _ := f.CurrentRun(ctx); ok {
		return view, true, nil
	}
	return f.LastRun(ctx)
}

func runStatusCmd(t *testing.T, reader fakeStatusReader, args ...string) (string, error) {
	t.Helper()

	cmd := newImportStatusCmd(reader)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportStatusCmdSelectsRun(t *testing.T) {
	current := recurringimport.StatusView{RunID: 9, Status: "running", StartedAt: time.Unix(200, 0).UTC()}
	ended := time.Unix(150, 0).UTC()
	last := recurringimport.StatusView{RunID: 8, Status: "finished", StartedAt: time.Unix(100, 0).UTC(), EndedAt: &ended}
	reader := fakeStatusReader{current: &current, last: &last}

	cases := []struct {
		args   []string
		wantID uint64
	}{
		{args: nil, wantID: 9},
		{args: []string{"--run", "current"}, wantID: 9},
		{args: []string{"--run", "last"}, wantID: 8},
	}
	for _, tc := range cases {
		out, err := runStatusCmd(t, reader, tc.args...)
		if err != nil {
			t.Fatalf("Execute(%v) error = %v", tc.args, err)
		}
		var view recurringimport.StatusView
		if err := json.Unmarshal([]byte(out), &view); err != nil {
			t.Fatalf("Unmarshal(%q) error = %v", out, err)
		}
		if view.RunID != tc.wantID {
			t.Fatalf("Execute(%v) run_id = %d, want %d", tc.args, view.RunID, tc.wantID)
		}
	}
}

func TestImportStatusCmdNoRun(t *testing.T) {
	out, err := runStatusCmd(t, fakeStatusReader{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(out) != "no import run recorded" {
		t.Fatalf("output = %q", out)
	}

	if _, err := runStatusCmd(t, fakeStatusReader{}, "--run", "oldest"); err == nil {
		t.Fatalf("Execute() error = nil for unknown --run value")
	}
	if _, err := runStatusCmd(t, fakeStatusReader{}, "--output", "xml"); err == nil {
		t.Fatalf("Execute() error = nil for unknown --output value")
	}
}

func TestImportStatusCmdYAML(t *testing.T) {
	current := recurringimport.StatusView{RunID: 4, Status: "running", ExecutionType: "manual", Total: 10, Processed: 5, Progress: 0.5}

	out, err := runStatusCmd(t, fakeStatusReader{current: &current}, "-o", "yaml")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("yaml.Unmarshal(%q) error = %v", out, err)
	}
	if decoded["run_id"] != 4 || decoded["execution_type"] != "manual" || decoded["progress"] != 0.5 {
		t.Fatalf("decoded = %v", decoded)
	}
	if _, ok := decoded["ended_at"]; ok {
		t.Fatalf("running run reports ended_at: %v", decoded)
	}
}
