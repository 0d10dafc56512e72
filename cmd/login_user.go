package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"icecatimport/internal/bootstrap"
	"icecatimport/internal/bootstrap/logging"
	"icecatimport/internal/errs"
	"icecatimport/internal/usecase/recurringimport"
)

var loginUserCmd = &cobra.Command{
	Use:   "login-user",
	Short: "Manage the Icecat account used for lookups",
}

var loginUserSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Record the Icecat user id sent with every lookup",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, importSvc *recurringimport.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		userID, _ := cmd.Flags().GetString("user-id")
		userID = strings.TrimSpace(userID)
		if err := importSvc.SetLoginUser(ctx, userID); err != nil {
			logging.Error(ctx, "save login user failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "save login user")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "login user recorded: %s\n", userID); err != nil {
			return errs.Wrap(err, "write login-user output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(loginUserCmd)
	loginUserCmd.AddCommand(loginUserSetCmd)

	loginUserSetCmd.Flags().String("user-id", "", "Icecat user name")
	_ = loginUserSetCmd.MarkFlagRequired("user-id")
}
