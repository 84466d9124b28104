package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qepting91/redelete/internal/config"
	"github.com/qepting91/redelete/internal/ingest"
)

var (
	configRules  ruleFlags
	refreshToken string
	importFile   string
)

var configCmd = &cobra.Command{
	Use:   "config <username>",
	Short: "Set default configuration options for the app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := loadEnv()
		if err != nil {
			return err
		}
		return saveSettings(cmd, store, args[0], configRules)
	},
}

func init() {
	addRuleFlags(configCmd, &configRules)
	configCmd.Flags().StringVar(&refreshToken, "refresh-token", "", "Store an OAuth refresh token for this account")
	configCmd.Flags().StringVar(&importFile, "exclude-file", "", "Add every subreddit listed in this CSV file to the exclusion list")
}

func saveSettings(cmd *cobra.Command, store *config.Store, username string, rf ruleFlags) error {
	out := cmd.OutOrStdout()

	if refreshToken != "" {
		if _, err := store.SaveToken(username, config.Token{RefreshToken: refreshToken, TokenType: "bearer"}); err != nil {
			return fmt.Errorf("unable to save token: %w", err)
		}
		fmt.Fprintf(out, "Authorized account %s\n", username)
	}
	if cmd.Flags().Changed("min-score") {
		if err := store.SetMinimumScore(username, rf.minScore); err != nil {
			return fmt.Errorf("unable to set minimum score: %w", err)
		}
		if rf.minScore > 0 {
			fmt.Fprintf(out, "Set minimum score to %d\n", rf.minScore)
		} else {
			fmt.Fprintln(out, "Removed minimum score filter.")
		}
	}
	if cmd.Flags().Changed("max-hours") {
		if err := store.SetMaxHours(username, rf.maxHours); err != nil {
			return fmt.Errorf("unable to set max hours: %w", err)
		}
		if rf.maxHours > 0 {
			fmt.Fprintf(out, "Max hours set to %d\n", rf.maxHours)
		} else {
			fmt.Fprintln(out, "Removed max hours filter.")
		}
	}

	add := rf.addExcluded
	if importFile != "" {
		subs, skipped, err := ingest.LoadExclusions(importFile)
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", importFile, err)
		}
		for _, name := range skipped {
			fmt.Fprintf(out, "Skipping invalid subreddit name %q\n", name)
		}
		add = append(add, subs...)
	}
	if len(add) > 0 {
		acct, err := store.AddExcludedSubreddits(username, add)
		if err != nil {
			return fmt.Errorf("unable to set subreddit exclusion: %w", err)
		}
		printExcluded(cmd, acct)
	}
	if len(rf.removeExcluded) > 0 {
		acct, err := store.RemoveExcludedSubreddits(username, rf.removeExcluded)
		if err != nil {
			return fmt.Errorf("unable to set subreddit exclusion: %w", err)
		}
		printExcluded(cmd, acct)
	}
	return nil
}

func printExcluded(cmd *cobra.Command, acct config.Account) {
	if len(acct.ExcludedSubreddits) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Excluded subreddits updated -- no subreddits are excluded.")
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Excluded subreddits set to %s.\n", strings.Join(acct.ExcludedSubreddits, ", "))
}
