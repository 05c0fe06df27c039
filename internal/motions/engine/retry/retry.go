// Package retry wraps an engine.Engine with bounded exponential backoff.
//
// The core pipeline never retries on its own; this decorator is wired only
// when engine.retry.max_attempts is greater than one. Credential problems and
// malformed requests are permanent, while upstream 408/429/5xx responses,
// network timeouts and empty replies are retried.
package retry

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/yungbote/debate-motions/internal/motions/domain"
	"github.com/yungbote/debate-motions/internal/motions/engine"
	"github.com/yungbote/debate-motions/internal/motions/engine/oaihttp"
	"github.com/yungbote/debate-motions/internal/platform/logger"
)

type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

type Engine struct {
	next engine.Engine
	opts Options
	log  *logger.Logger
}

// Wrap returns next unchanged when opts allow a single attempt.
func Wrap(next engine.Engine, opts Options, log *logger.Logger) engine.Engine {
	if next == nil || opts.MaxAttempts <= 1 {
		return next
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.MaxDelay < opts.BaseDelay {
		opts.MaxDelay = opts.BaseDelay
	}
	return &Engine{next: next, opts: opts, log: log}
}

func (e *Engine) Complete(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.opts.BaseDelay
	b.MaxInterval = e.opts.MaxDelay

	attempt := 0
	text, err := backoff.Retry(ctx, func() (string, error) {
		attempt++
		out, err := e.next.Complete(ctx, model, messages, opts)
		if err == nil {
			return out, nil
		}
		if !Retryable(err) {
			return "", backoff.Permanent(err)
		}
		return "", err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(e.opts.MaxAttempts)),
		backoff.WithNotify(func(err error, delay time.Duration) {
			if e.log != nil {
				e.log.Warn("inference attempt failed, retrying",
					"attempt", attempt,
					"max_attempts", e.opts.MaxAttempts,
					"delay_ms", delay.Milliseconds(),
					"error", err,
				)
			}
		}),
	)
	if err == nil {
		return text, nil
	}

	var typed *domain.Error
	if errors.As(err, &typed) {
		return "", err
	}
	// Context cancellation while waiting between attempts.
	return "", domain.NewError(domain.KindTransportFailure, err.Error(), err)
}

// Retryable reports whether err is worth another inference attempt.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var typed *domain.Error
	if !errors.As(err, &typed) {
		return false
	}
	switch typed.Kind {
	case domain.KindEmptyReply:
		return true
	case domain.KindTransportFailure:
	default:
		return false
	}

	var httpErr *oaihttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
