// Package statestore persists stream state snapshots in Redis so that
// incremental reads can resume where the previous run stopped.
//
// The pagination core treats state as a read-only mapping; this package is
// the collaborator that loads the snapshot before a run and saves the
// updated cursor after it:
//
//	store := statestore.NewStore(redisClient)
//	key := statestore.Key{Source: "shop", Stream: "orders"}
//
//	state, err := store.Get(ctx, key)
//	if err == statestore.ErrNotFound {
//	    state = nil // first run
//	}
//
//	// ... read records, fold cursors into state ...
//
//	if err := store.Set(ctx, key, state); err != nil {
//	    return err
//	}
//
// Snapshots are stored as JSON under deterministic keys
// ("state:<source>:<stream>") and carry the time they were written, so a
// stale checkpoint is detectable.
package statestore
