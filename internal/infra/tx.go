package infra

// tx.go — transaction boundary + bounded retry for the single-writer store.
// Every mutating service path runs inside RunInTx; reads never go through it
// since they do not contend for the writer lock.

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/mauropillox/chorilocal-sub000/internal/apierror"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	txMaxAttempts    = 5
	txBaseBackoff    = 20 * time.Millisecond
	txAttemptTimeout = 5 * time.Second
)

// IsBusy reports whether err is SQLite writer-lock contention, the only store
// failure worth retrying.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// RunInTx executes fn inside a transaction, retrying on lock contention with
// exponential backoff. Each attempt carries its own deadline so a transaction
// that cannot acquire the writer lock aborts instead of hanging. When the
// attempt budget is exhausted the error maps to Transient; every other error
// aborts immediately and propagates unchanged.
func RunInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var lastErr error
	backoff := txBaseBackoff

	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, txAttemptTimeout)
		err := db.WithContext(attemptCtx).Transaction(fn)
		cancel()

		if err == nil {
			return nil
		}
		if !IsBusy(err) && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		lastErr = err
		// No backoff after the last attempt, and none once the caller is gone.
		if ctx.Err() != nil || attempt == txMaxAttempts {
			break
		}

		log.Warn().
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Err(err).
			Msg("tx: store busy, retrying")

		jitter := time.Duration(rand.Int63n(int64(backoff) / 2))
		select {
		case <-ctx.Done():
			return &apierror.Error{Kind: apierror.KindTransient,
				Msg: "Operacion cancelada", Err: ctx.Err()}
		case <-time.After(backoff + jitter):
		}
		backoff *= 2
	}

	return &apierror.Error{Kind: apierror.KindTransient,
		Msg: "La base de datos esta ocupada, reintente en unos segundos", Err: lastErr}
}
