package transaction

import "context"

// Store applies a commit atomically. It returns pool.ErrNotAvailable when the
// added entry lost its available status, team.ErrNotOnRoster when the dropped
// entry is gone and team.ErrStateChanged when the transaction count moved.
type Store interface {
	Commit(ctx context.Context, commit Commit) error
}
