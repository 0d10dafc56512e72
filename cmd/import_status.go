package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"icecatimport/internal/bootstrap"
	"icecatimport/internal/bootstrap/logging"
	"icecatimport/internal/delivery/httpstatus"
	"icecatimport/internal/errs"
	"icecatimport/internal/usecase/recurringimport"
)

var importStatusCmd = newImportStatusCmd(nil)

func newImportStatusCmd(reader httpstatus.StatusReader) *cobra.Command {
	runWithReader := func(cmd *cobra.Command, statusReader httpstatus.StatusReader) error {
		if statusReader == nil {
			return errors.New("import service is not configured")
		}

		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		which, _ := cmd.Flags().GetString("run")
		format, _ := cmd.Flags().GetString("output")
		if format != "json" && format != "yaml" {
			return fmt.Errorf("unknown --output value %q (want json or yaml)", format)
		}
		lookup := statusReader.Status
		switch which {
		case "", "status":
		case "current":
			lookup = statusReader.CurrentRun
		case "last":
			lookup = statusReader.LastRun
		default:
			return fmt.Errorf("unknown --run value %q (want status, current or last)", which)
		}

		view, ok, err := lookup(ctx)
		if err != nil {
			logging.Error(ctx, "read import status failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "read import status")
		}
		if !ok {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no import run recorded"); err != nil {
				return errs.Wrap(err, "write import status output")
			}
			return nil
		}

		if err := writeStatus(cmd.OutOrStdout(), format, view); err != nil {
			return errs.Wrap(err, "write import status output")
		}
		return nil
	}

	runE := withApp(func(cmd *cobra.Command, _ *bootstrap.App, importSvc *recurringimport.Service) error {
		return runWithReader(cmd, importSvc)
	})
	if reader != nil {
		runE = func(cmd *cobra.Command, _ []string) error {
			return runWithReader(cmd, reader)
		}
	}

	cmd := &cobra.Command{
		Use:   "import-status",
		Short: "Print the running or last finished import",
		RunE:  runE,
	}
	cmd.Flags().String("run", "status", "Which run to show: status, current or last")
	cmd.Flags().StringP("output", "o", "json", "Output format: json or yaml")
	return cmd
}

func writeStatus(w io.Writer, format string, view recurringimport.StatusView) error {
	if format == "yaml" {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(view); err != nil {
			return err
		}
		return encoder.Close()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(view)
}

func init() {
	rootCmd.AddCommand(importStatusCmd)
}
