package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"icecatimport/internal/bootstrap"
	"icecatimport/internal/bootstrap/logging"
	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/errs"
	"icecatimport/internal/usecase/recurringimport"
)

type recurringImportRunner interface {
	RecurringImport(ctx context.Context, input recurringimport.RunInput) (recurringimport.RunSummary, error)
}

var recurringImportCmd = newRecurringImportCmd(nil)

func newRecurringImportCmd(runner recurringImportRunner) *cobra.Command {
	runWithService := func(cmd *cobra.Command, svc recurringImportRunner) error {
		if svc == nil {
			return errors.New("import service is not configured")
		}

		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		executionType, _ := cmd.Flags().GetString("execution-type")
		failOnAbort, _ := cmd.Flags().GetBool("fail-on-abort")

		summary, err := svc.RecurringImport(ctx, recurringimport.RunInput{
			ExecutionType: strings.TrimSpace(executionType),
		})
		if err != nil {
			logging.Error(ctx, "recurring import failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run recurring import")
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), formatSummary(summary)); err != nil {
			return errs.Wrap(err, "write recurring import output")
		}

		if failOnAbort && !summary.Completed() {
			reason := summary.AbortReason
			if reason == nil {
				reason = errors.New("run did not complete")
			}
			return errs.Wrapf(reason, "recurring import %s", summary.Outcome)
		}
		return nil
	}

	runE := withApp(func(cmd *cobra.Command, _ *bootstrap.App, importSvc *recurringimport.Service) error {
		return runWithService(cmd, importSvc)
	})
	if runner != nil {
		runE = func(cmd *cobra.Command, _ []string) error {
			return runWithService(cmd, runner)
		}
	}

	cmd := &cobra.Command{
		Use:   "recurring-import",
		Short: "Run one recurring Icecat import",
		RunE:  runE,
	}

	cmd.Flags().String("execution-type", importrun.ExecutionAutomatic, "Execution type recorded on the run (automatic, manual)")
	cmd.Flags().Bool("fail-on-abort", false, "Exit non-zero when the run is refused or aborted")

	return cmd
}

func formatSummary(summary recurringimport.RunSummary) string {
	line := fmt.Sprintf(
		"recurring import %s: run_id=%d source=%s total=%d processed=%d success=%d errors=%d",
		summary.Outcome,
		summary.RunID,
		valueOrDash(summary.Source),
		summary.Counters.Total,
		summary.Counters.Processed,
		summary.Counters.Success,
		summary.Counters.Errors,
	)
	if summary.AbortReason != nil {
		line += " reason=" + summary.AbortReason.Error()
	}
	return line
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func init() {
	rootCmd.AddCommand(recurringImportCmd)
}
