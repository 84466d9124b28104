// Package executor carries out, or in dry-run mode only reports, the
// deletion of approved history items.
package executor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/qepting91/redelete/internal/domain"
)

type Executor struct {
	remover domain.Remover
	logger  *slog.Logger
}

func New(remover domain.Remover, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{remover: remover, logger: logger}
}

// Execute deletes item in Live mode. In DryRun mode the remover is never
// called and the item comes back Skipped. A not-found answer counts as
// deleted, so repeating a delete is harmless.
func (e *Executor) Execute(ctx context.Context, item domain.HistoryItem, mode domain.Mode) domain.ExecResult {
	if mode != domain.Live {
		e.logger.Debug("dry run, would delete", "id", item.ID, "kind", item.Kind.String(), "subreddit", item.Subreddit)
		return domain.ExecResult{Item: item, Status: domain.StatusSkipped}
	}

	err := e.remover.Remove(ctx, item)
	switch {
	case err == nil:
		e.logger.Info("deleted", "id", item.ID, "kind", item.Kind.String(), "subreddit", item.Subreddit)
		return domain.ExecResult{Item: item, Status: domain.StatusDeleted}
	case errors.Is(err, domain.ErrNotFound):
		e.logger.Info("already gone", "id", item.ID)
		return domain.ExecResult{Item: item, Status: domain.StatusDeleted, AlreadyGone: true}
	}

	execErr := asExecError(item, err)
	e.logger.Warn("delete failed", "id", item.ID, "kind", execErr.Kind, "retryable", execErr.Retryable(), "err", err)
	return domain.ExecResult{Item: item, Status: domain.StatusFailed, Err: execErr}
}

func asExecError(item domain.HistoryItem, err error) *domain.ExecError {
	var execErr *domain.ExecError
	if errors.As(err, &execErr) {
		if execErr.ID == "" {
			execErr.ID = item.ID
		}
		return execErr
	}
	kind := domain.KindOf(err)
	if kind == nil {
		kind = domain.ErrTransient
	}
	return &domain.ExecError{ID: item.ID, Kind: kind, Err: err}
}
