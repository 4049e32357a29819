// Package mirror defines the remote record mirror the ledger best-effort
// replicates to, with PostgREST and Google Sheets adapters.
package mirror

import (
	"context"
	"errors"

	"bilancio/internal/core"
)

// ErrUnsupported is returned by adapters that cannot serve an operation
// (the Sheets adapter is append-only). Callers treat it as "nothing there".
var ErrUnsupported = errors.New("operation not supported by this mirror")

// IsPermanent reports whether err is an upstream rejection that retrying the
// same record cannot cure (a 4xx response, e.g. a schema or validation
// failure). Conflicts never reach callers; upserts resolve them internally.
func IsPermanent(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Status >= 400 && se.Status < 500
}

// Mirror is the outbound port for remote replication. Fetches feed
// hydration; upserts are issued by the sync worker. All failures here are
// transport-level: the ledger's local state never depends on them.
type Mirror interface {
	FetchTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
	FetchGoals(ctx context.Context, ownerID string) ([]core.Goal, error)
	UpsertTransaction(ctx context.Context, t core.Transaction) error
	UpsertGoal(ctx context.Context, g core.Goal) error
}
