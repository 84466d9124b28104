package main

import (
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/qepting91/redelete/internal/collector"
	"github.com/qepting91/redelete/internal/config"
	"github.com/qepting91/redelete/internal/dashboard"
	"github.com/qepting91/redelete/internal/domain"
	"github.com/qepting91/redelete/internal/engine"
	"github.com/qepting91/redelete/internal/executor"
	"github.com/qepting91/redelete/internal/filter"
	"github.com/qepting91/redelete/internal/ingest"
	"github.com/qepting91/redelete/internal/pacing"
	"github.com/qepting91/redelete/internal/storage"
)

type ruleFlags struct {
	addExcluded    []string
	removeExcluded []string
	minScore       int
	maxHours       int
}

var (
	dryRun      bool
	runRules    ruleFlags
	excludeFile string
	journalPath string
	reportPath  string
)

var runCmd = &cobra.Command{
	Use:   "run <username>",
	Short: "Run the deletion part of the app",
	Long: `Walks the whole comment and submission history of <username> and deletes
everything the saved filters do not keep. Filter flags given here apply to
this run only; use "config" to save them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd, args[0])
	},
}

func init() {
	runCmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Show what would be deleted without deleting it")
	addRuleFlags(runCmd, &runRules)
	runCmd.Flags().StringVar(&excludeFile, "exclude-file", "", "CSV file of subreddits to keep (header row, names in the first column)")
	runCmd.Flags().StringVar(&journalPath, "journal", "", "Append every item decision to this NDJSON file")
	runCmd.Flags().StringVar(&reportPath, "report", "", "Write an HTML chart report of the run to this file")
}

func addRuleFlags(cmd *cobra.Command, rf *ruleFlags) {
	cmd.Flags().StringSliceVarP(&rf.addExcluded, "add-excluded", "a", nil, "Subreddits whose comments and submissions are never deleted")
	cmd.Flags().StringSliceVarP(&rf.removeExcluded, "remove-excluded", "r", nil, "Subreddits to take off the exclusion list")
	cmd.Flags().IntVarP(&rf.minScore, "min-score", "s", 0, "Keep items scoring at least this much. 0 removes the filter")
	cmd.Flags().IntVarP(&rf.maxHours, "max-hours", "t", 0, "Keep items made within this many hours. 0 removes the filter")
}

// applyOverrides layers run-only flags over the saved rule set.
func applyOverrides(cmd *cobra.Command, rules domain.FilterRule, rf ruleFlags) domain.FilterRule {
	rules = rules.Clone()
	if cmd.Flags().Changed("min-score") {
		rules.MinScoreThreshold = nil
		if rf.minScore > 0 {
			rules.MinScoreThreshold = domain.Int(rf.minScore)
		}
	}
	if cmd.Flags().Changed("max-hours") {
		rules.MinAgeHours = nil
		if rf.maxHours > 0 {
			rules.MinAgeHours = domain.Int(rf.maxHours)
		}
	}
	rules.ExcludedSubreddits = append(rules.ExcludedSubreddits, rf.addExcluded...)
	if len(rf.removeExcluded) > 0 {
		drop := make(map[string]bool, len(rf.removeExcluded))
		for _, sub := range rf.removeExcluded {
			drop[filter.NormalizeSubreddit(sub)] = true
		}
		kept := rules.ExcludedSubreddits[:0]
		for _, sub := range rules.ExcludedSubreddits {
			if !drop[filter.NormalizeSubreddit(sub)] {
				kept = append(kept, sub)
			}
		}
		rules.ExcludedSubreddits = kept
	}
	return rules
}

func runDelete(cmd *cobra.Command, username string) error {
	cfg, store, err := loadEnv()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.CollectorMode == config.ModeAPI && cfg.Username != username {
		return fmt.Errorf("api mode is logged in as %q, not %q", cfg.Username, username)
	}

	account, err := store.Account(username)
	if errors.Is(err, config.ErrAccountNotFound) {
		return fmt.Errorf("%s is not a saved username in your config. Try \"redelete config %s\" first", username, username)
	}
	if err != nil {
		return err
	}

	rules := applyOverrides(cmd, account.FilterRule(), runRules)
	if excludeFile != "" {
		subs, skipped, err := ingest.LoadExclusions(excludeFile)
		if err != nil {
			return fmt.Errorf("load exclusions: %w", err)
		}
		if len(skipped) > 0 {
			logger.Warn("skipped invalid subreddit names", "file", excludeFile, "names", skipped)
		}
		rules.ExcludedSubreddits = append(rules.ExcludedSubreddits, subs...)
	}

	mode := domain.Live
	if dryRun {
		mode = domain.DryRun
	}

	pacer := pacing.New(cfg.RequestsPerMinute)
	hist, err := collector.NewCollector(cfg, account, pacer, func(tok *oauth2.Token) {
		if err := store.SaveOAuthToken(username, tok); err != nil {
			logger.Warn("could not save refreshed token", "err", err)
		}
	})
	if err != nil {
		logger.Error("Failed to initialize collector", "error", err)
		return err
	}
	logger.Info("Collector initialized", "mode", cfg.CollectorMode, "account", username, "run", mode.String())

	out := cmd.OutOrStdout()
	observers := []func(domain.Outcome){}
	if mode == domain.DryRun {
		printed := false
		observers = append(observers, func(o domain.Outcome) {
			if o.Action != domain.StatusSkipped.String() {
				return
			}
			if !printed {
				printed = true
				fmt.Fprintln(out, titleStyle.Render("Would delete comments/submissions:"))
			}
			renderCandidate(out, o.Item)
		})
	}

	var journal *storage.WriterService
	var journalWg sync.WaitGroup
	var journalCh chan domain.Outcome
	if journalPath != "" {
		journal = &storage.WriterService{FilePath: journalPath}
		journalCh = make(chan domain.Outcome, 100)
		journalWg.Add(1)
		go journal.Start(&journalWg, journalCh)
		observers = append(observers, func(o domain.Outcome) { journalCh <- o })
	}

	eng := engine.New(hist, executor.New(hist, logger), engine.Options{
		Mode:             mode,
		MaxFetchAttempts: cfg.MaxFetchAttempts,
		Logger:           logger,
		Observe: func(o domain.Outcome) {
			for _, fn := range observers {
				fn(o)
			}
		},
	})

	// Graceful Shutdown: the engine stops between items
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, runErr := eng.Run(ctx, username, rules)
	stop()

	if journal != nil {
		close(journalCh)
		journalWg.Wait()
		if err := journal.Err(); err != nil {
			logger.Warn("journal incomplete", "path", journalPath, "err", err)
		}
	}

	renderSummary(out, username, mode, res, runErr)

	if reportPath != "" {
		if err := dashboard.WriteFile(reportPath, username, res); err != nil {
			logger.Warn("report not written", "path", reportPath, "err", err)
		} else {
			fmt.Fprintln(out, labelStyle.Render("Report written to "+reportPath))
		}
	}

	if runErr != nil || !res.Clean() {
		return errRunFailed
	}
	return nil
}
