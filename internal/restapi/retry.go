package restapi

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/input-output-hk/nexus-client/errors"
)

const (
	retryInitialInterval = 200 * time.Millisecond
	retryMaxInterval     = 5 * time.Second
)

// retry runs fn until it succeeds, returns a permanent error, the context is
// done, or the retry budget is exhausted. Only idempotent requests go through it.
func (c *Client) retry(ctx context.Context, op string, fn func() error) error {
	if c.maxRetries <= 0 {
		return unwrapPermanent(fn())
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying request", "op", op, "error", err, "wait", wait)
	}

	err := backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, policy, notify)

	err = unwrapPermanent(err)
	var nexusErr *errors.Error
	if err != nil && !stderrors.As(err, &nexusErr) {
		// the backoff gave up on a done context between attempts
		return errors.NewRemoteError(op, "", "", err)
	}
	return err
}

// classify marks status errors that are not worth retrying as permanent.
func classify(err error) error {
	var nexusErr *errors.Error
	if stderrors.As(err, &nexusErr) && !retryableStatus(nexusErr.StatusCode) {
		return backoff.Permanent(err)
	}
	return err
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func permanent(err error) error {
	return backoff.Permanent(err)
}

func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if stderrors.As(err, &perm) {
		return perm.Err
	}
	return err
}
