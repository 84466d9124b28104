// Package engine walks an account's history page by page, filters each item
// and hands the approved ones to the deletion executor.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/qepting91/redelete/internal/domain"
	"github.com/qepting91/redelete/internal/executor"
	"github.com/qepting91/redelete/internal/filter"
)

// State is the engine's position in a run.
type State int

const (
	Starting State = iota
	Fetching
	Filtering
	Deleting
	Completed
	Aborted
)

func (s State) String() string {
	return [...]string{"starting", "fetching", "filtering", "deleting", "completed", "aborted"}[s]
}

type Options struct {
	Mode domain.Mode

	// MaxFetchAttempts bounds how often one page is tried on transient errors.
	MaxFetchAttempts int
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration

	// Now is read once per run; filter decisions share that instant.
	Now    func() time.Time
	Logger *slog.Logger

	// Observe, when set, receives every item decision in order.
	Observe func(domain.Outcome)
}

const (
	DefaultMaxFetchAttempts = 5
	DefaultInitialBackoff   = time.Second
	DefaultMaxBackoff       = 30 * time.Second
)

type Engine struct {
	fetcher domain.Fetcher
	exec    *executor.Executor
	opts    Options
	state   State
}

func New(fetcher domain.Fetcher, exec *executor.Executor, opts Options) *Engine {
	if opts.MaxFetchAttempts <= 0 {
		opts.MaxFetchAttempts = DefaultMaxFetchAttempts
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = DefaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = DefaultMaxBackoff
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{fetcher: fetcher, exec: exec, opts: opts}
}

// State returns where the last (or current) run stands.
func (e *Engine) State() State {
	return e.state
}

// Run traverses the whole history of account. It returns the accumulated
// result; on abort the error is an *domain.AbortError and the result holds
// everything done so far.
//
// Cancelling ctx stops the run between items. Calls already on the wire are
// allowed to finish.
func (e *Engine) Run(ctx context.Context, account string, rules domain.FilterRule) (domain.RunResult, error) {
	log := e.opts.Logger.With("account", account, "mode", e.opts.Mode.String())
	rules = rules.Clone()
	now := e.opts.Now()
	callCtx := context.WithoutCancel(ctx)

	var result domain.RunResult
	var cursor *domain.Cursor
	e.transition(log, Starting)

	abort := func(cause domain.AbortCause, err error) (domain.RunResult, error) {
		e.transition(log, Aborted)
		log.Error("run aborted", "cause", cause.String(), "err", err, "seen", result.Seen)
		return result, &domain.AbortError{Cause: cause, Err: err}
	}

	for {
		if err := ctx.Err(); err != nil {
			return abort(domain.AbortCanceled, err)
		}

		e.transition(log, Fetching)
		page, err := e.fetch(ctx, callCtx, log, account, cursor)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrExhausted):
			e.transition(log, Completed)
			return result, nil
		case errors.Is(err, domain.ErrUnauthorized):
			return abort(domain.AbortAuthExpired, err)
		case ctx.Err() != nil:
			return abort(domain.AbortCanceled, ctx.Err())
		case errors.Is(err, domain.ErrTransient):
			return abort(domain.AbortFetchFailedAfterRetries, err)
		default:
			return abort(domain.AbortFetchFailed, err)
		}
		result.Pages++
		log.Debug("page fetched", "page", result.Pages, "items", len(page.Items))

		e.transition(log, Filtering)
		approved := make([]domain.HistoryItem, 0, len(page.Items))
		for _, item := range page.Items {
			result.Seen++
			decision := filter.Evaluate(item, rules, now)
			if !decision.Delete {
				result.Retain(decision.Reason)
				e.observe(domain.Outcome{Item: item, Action: "retained", Reason: decision.Reason.String()})
				continue
			}
			approved = append(approved, item)
		}

		e.transition(log, Deleting)
		for _, item := range approved {
			if err := ctx.Err(); err != nil {
				return abort(domain.AbortCanceled, err)
			}
			res := e.exec.Execute(callCtx, item, e.opts.Mode)
			result.Record(res)
			e.observe(outcome(res))
			if res.Status == domain.StatusFailed && errors.Is(res.Err, domain.ErrUnauthorized) {
				return abort(domain.AbortAuthExpired, res.Err)
			}
		}

		if page.Next == nil {
			return abort(domain.AbortFetchFailed, errors.New("fetcher returned a page without a next cursor"))
		}
		if page.Next.Exhausted() {
			e.transition(log, Completed)
			return result, nil
		}
		cursor = page.Next
	}
}

// fetch asks for one page, retrying transient failures with exponential
// backoff. The backoff sleep is interruptible; the call itself is not.
func (e *Engine) fetch(ctx, callCtx context.Context, log *slog.Logger, account string, cursor *domain.Cursor) (domain.Page, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.opts.InitialBackoff
	b.MaxInterval = e.opts.MaxBackoff

	attempt := 0
	op := func() (domain.Page, error) {
		attempt++
		page, err := e.fetcher.FetchNext(callCtx, account, cursor)
		if err == nil {
			return page, nil
		}
		if errors.Is(err, domain.ErrTransient) {
			return domain.Page{}, err
		}
		return domain.Page{}, backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("fetch failed, retrying", "attempt", attempt, "max_attempts", e.opts.MaxFetchAttempts, "wait", wait, "err", err)
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(e.opts.MaxFetchAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
}

func (e *Engine) transition(log *slog.Logger, s State) {
	e.state = s
	log.Debug("state", "state", s.String())
}

func (e *Engine) observe(o domain.Outcome) {
	if e.opts.Observe == nil {
		return
	}
	o.At = time.Now().UTC()
	e.opts.Observe(o)
}

func outcome(res domain.ExecResult) domain.Outcome {
	o := domain.Outcome{Item: res.Item, Action: res.Status.String()}
	if res.AlreadyGone {
		o.Reason = "already_gone"
	}
	if res.Err != nil {
		o.Error = res.Err.Error()
	}
	return o
}
