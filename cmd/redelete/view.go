package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qepting91/redelete/internal/config"
)

var viewCmd = &cobra.Command{
	Use:   "view <username>",
	Short: "View saved configs for given <username>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := loadEnv()
		if err != nil {
			return err
		}
		acct, err := store.Account(args[0])
		if errors.Is(err, config.ErrAccountNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), "Unable to find username. Did you authorize this app with that reddit account yet?")
			return nil
		}
		if err != nil {
			return err
		}
		renderSettings(cmd.OutOrStdout(), acct)
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget <username>",
	Short: "Remove a saved account and its token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := loadEnv()
		if err != nil {
			return err
		}
		removed, err := store.DeleteAccount(args[0])
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is not a saved username.\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s.\n", args[0])
		return nil
	},
}

func renderSettings(w io.Writer, acct config.Account) {
	fmt.Fprintf(w, "Settings for: %s\n", acct.Username)
	if len(acct.ExcludedSubreddits) > 0 {
		fmt.Fprintf(w, "Excluded subreddits: %s\n", strings.Join(acct.ExcludedSubreddits, ", "))
	} else {
		fmt.Fprintln(w, "Not excluding any subreddits.")
	}
	if acct.MaxHours != nil {
		plural := "s"
		if *acct.MaxHours == 1 {
			plural = ""
		}
		fmt.Fprintf(w, "Not deleting any posts made within %d hour%s.\n", *acct.MaxHours, plural)
	} else {
		fmt.Fprintln(w, "No time minimum before deleting posts.")
	}
	if acct.MinimumScore != nil {
		fmt.Fprintf(w, "Only deleting posts with a score less than %d.\n", *acct.MinimumScore)
	} else {
		fmt.Fprintln(w, "No score limit set.")
	}
}
