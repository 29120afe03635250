package provider

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/vlm-extract/internal/common"
)

// runWithRetry drives the shared attempt loop. The attempt closure receives
// a context carrying the per-attempt timeout and returns either text or an
// error the adapter has already classified. Permanent and configuration
// errors stop the loop immediately; everything else is retried until the
// limit, then surfaced with attempt context.
func runWithRetry(ctx context.Context, logger *slog.Logger, name string, st Settings, limiter *rate.Limiter, attempt func(ctx context.Context) (string, error)) (string, error) {
	maxRetries := st.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for n := 1; n <= maxRetries; n++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return "", err
			}
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		actx, cancel := context.WithTimeout(ctx, st.Timeout)
		text, err := attempt(actx)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err

		if common.IsPermanent(err) || common.IsConfig(err) {
			return "", err
		}
		logger.Warn(name+".retry",
			"attempt", n,
			"max_retries", maxRetries,
			"error", err,
		)
	}

	if isTimeout(lastErr) {
		return "", common.WrapError(common.KindTransient,
			fmt.Sprintf("%s request timed out after %s (%d attempts)", name, st.Timeout, maxRetries), lastErr)
	}
	if common.IsTransient(lastErr) {
		// already classified; add attempt context
		return "", common.WrapError(common.KindTransient,
			fmt.Sprintf("%s request failed after %d attempts", name, maxRetries), lastErr)
	}
	return "", common.WrapError(common.KindTransient,
		fmt.Sprintf("failed to extract text from image after %d attempts", maxRetries), lastErr)
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
