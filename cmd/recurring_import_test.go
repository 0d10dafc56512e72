package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/usecase/recurringimport"
)

type fakeImportRunner struct {
	summary recurringimport.RunSummary
	err     error
	inputs  []recurringimport.RunInput
}

func (f *fakeImportRunner) RecurringImport(_ context.Context, input recurringimport.RunInput) (recurringimport.RunSummary, error) {
	f.inputs = append(f.inputs, input)
	return f.summary, f.err
}

func runImportCmd(t *testing.T, runner *fakeImportRunner, args ...string) (string, error) {
	t.Helper()

	cmd := newRecurringImportCmd(runner)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecurringImportCmdPrintsSummary(t *testing.T) {
	runner := &fakeImportRunner{summary: recurringimport.RunSummary{
		RunID:    7,
		Outcome:  importrun.OutcomeCompleted,
		Source:   "spreadsheet",
		Counters: importrun.Counters{Total: 4, Processed: 4, Success: 3, Errors: 1},
	}}

	out, err := runImportCmd(t, runner, "--execution-type", " manual ")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(runner.inputs) != 1 || runner.inputs[0].ExecutionType != "manual" {
		t.Fatalf("inputs = %+v, want one manual run", runner.inputs)
	}
	want := "recurring import completed: run_id=7 source=spreadsheet total=4 processed=4 success=3 errors=1"
	if strings.TrimSpace(out) != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRecurringImportCmdAbortExitCode(t *testing.T) {
	aborted := recurringimport.RunSummary{
		RunID:       3,
		Outcome:     importrun.OutcomeAborted,
		AbortReason: importrun.ErrLoginUserMissing,
	}

	out, err := runImportCmd(t, &fakeImportRunner{summary: aborted})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil without --fail-on-abort", err)
	}
	if !strings.Contains(out, "source=- ") || !strings.Contains(out, "reason=") {
		t.Fatalf("output = %q", out)
	}

	_, err = runImportCmd(t, &fakeImportRunner{summary: aborted}, "--fail-on-abort")
	if !errors.Is(err, importrun.ErrLoginUserMissing) {
		t.Fatalf("Execute() error = %v, want ErrLoginUserMissing", err)
	}

	_, err = runImportCmd(t, &fakeImportRunner{summary: recurringimport.RunSummary{Outcome: importrun.OutcomeRefused}}, "--fail-on-abort")
	if err == nil {
		t.Fatalf("Execute() error = nil for refused run with --fail-on-abort")
	}
}

func TestRecurringImportCmdServiceError(t *testing.T) {
	boom := errors.New("finish run: disk full")
	_, err := runImportCmd(t, &fakeImportRunner{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("Execute() error = %v, want %v", err, boom)
	}
}

func TestRecurringImportCmdDefaults(t *testing.T) {
	cmd := newRecurringImportCmd(nil)
	executionType, _ := cmd.Flags().GetString("execution-type")
	if executionType != importrun.ExecutionAutomatic {
		t.Fatalf("execution-type = %q, want %q", executionType, importrun.ExecutionAutomatic)
	}
	failOnAbort, _ := cmd.Flags().GetBool("fail-on-abort")
	if failOnAbort {
		t.Fatalf("fail-on-abort defaults to true")
	}
}
