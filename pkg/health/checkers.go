package health

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck reports unhealthy when the goroutine count exceeds the
// threshold. Useful as a liveness check for goroutine leaks.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		count := runtime.NumGoroutine()
		if count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}

// FileCheck reports unhealthy when the file at path is missing or not a
// regular file. The storefront uses it as a readiness check on the catalog
// document.
func FileCheck(path string) CheckFunc {
	return func(_ context.Context) error {
		info, err := os.Stat(path)
		if err != nil {
			return errors.Wrapf(err, "stat %s", path)
		}
		if info.IsDir() {
			return errors.Errorf("%s is a directory", path)
		}
		return nil
	}
}

// Pinger is satisfied by pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseCheck reports unhealthy when the database does not answer a ping
// within the probe timeout.
func DatabaseCheck(db Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return errors.Wrap(err, "ping database")
		}
		return nil
	}
}

// Deadline guards a CheckFunc with an extra timeout on top of the probe's
// own, for checks wrapping clients that ignore context cancellation.
func Deadline(d time.Duration, check CheckFunc) CheckFunc {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return check(ctx)
	}
}
