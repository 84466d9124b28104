package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/qepting91/redelete/internal/domain"
)

var (
	clrGreen  = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	clrYellow = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	clrRed    = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
	clrCyan   = lipgloss.AdaptiveColor{Light: "#0891b2", Dark: "#22d3ee"}
	clrMuted  = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(clrCyan)
	labelStyle = lipgloss.NewStyle().Foreground(clrMuted)
	okStyle    = lipgloss.NewStyle().Foreground(clrGreen)
	warnStyle  = lipgloss.NewStyle().Foreground(clrYellow)
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(clrRed)
)

// renderCandidate prints one item a dry run would have deleted.
func renderCandidate(w io.Writer, item domain.HistoryItem) {
	where := labelStyle.Render(fmt.Sprintf("/r/%s:", item.Subreddit))
	if item.Kind == domain.Comment {
		fmt.Fprintf(w, "comment @ %s\n", where)
		fmt.Fprintf(w, "\t%s\n\n", indent(item.Body))
		return
	}
	fmt.Fprintf(w, "submission @ %s\n", where)
	fmt.Fprintf(w, "\t%s\n", item.Title)
	if item.Body != "" {
		fmt.Fprintf(w, "\t%s\n", indent(item.Body))
	}
	if item.URL != "" {
		fmt.Fprintf(w, "\t%s\n", item.URL)
	}
	fmt.Fprintln(w)
}

func indent(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n\t")
}

// renderSummary prints the counts of a finished or aborted run.
func renderSummary(w io.Writer, account string, mode domain.Mode, res domain.RunResult, runErr error) {
	if mode == domain.DryRun && runErr == nil && res.Skipped == 0 {
		fmt.Fprintln(w, "No comments or submissions to delete.")
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Run summary for %s (%s)", account, mode)))

	row := func(label string, n int, style lipgloss.Style) {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-22s", label)), style.Render(fmt.Sprint(n)))
	}
	row("Seen", res.Seen, lipgloss.NewStyle())
	row("Pages", res.Pages, lipgloss.NewStyle())
	row("Kept (subreddit)", res.Retained.Subreddit, okStyle)
	row("Kept (too new)", res.Retained.TooNew, okStyle)
	row("Kept (score too high)", res.Retained.ScoreTooHigh, okStyle)
	if mode == domain.DryRun {
		row("Would delete", res.Skipped, warnStyle)
	} else {
		row("Deleted", res.Deleted, warnStyle)
	}
	failStyle := okStyle
	if res.Failed > 0 {
		failStyle = errStyle
	}
	row("Failed", res.Failed, failStyle)

	for _, f := range res.Failures {
		fmt.Fprintf(w, "    %s %s\n", errStyle.Render(f.ID), f.Err)
	}

	var abort *domain.AbortError
	switch {
	case errors.As(runErr, &abort):
		fmt.Fprintf(w, "%s %s: %v\n", errStyle.Render("Stopped early:"), abort.Cause, abort.Err)
		if abort.Cause == domain.AbortAuthExpired {
			fmt.Fprintf(w, "Re-authorize the account with \"redelete config %s --refresh-token <token>\" and run again.\n", account)
		}
	case runErr != nil:
		fmt.Fprintf(w, "%s %v\n", errStyle.Render("Stopped early:"), runErr)
	default:
		fmt.Fprintln(w, okStyle.Render("Done."))
	}
}
