// Package state holds the dashboard's authoritative cluster snapshot.
//
// # Overview
//
// Store is the single owner of the ClusterSnapshot fetched from the
// clustering service. Writers (the poller, the submission flow, explicit
// user refreshes) call Refresh; readers (the UI, CLI commands) call Current
// and receive a deep copy.
//
//	Writers:                      Readers:
//	┌────────────────┐            ┌─────────────────┐
//	│ poller tick    │            │                 │
//	│ submit success │──Refresh──→│ store.Current() │
//	│ user "r" key   │  (mutex)   │   → project     │
//	└────────────────┘            │   → render      │
//	                              └─────────────────┘
//
// # Update Semantics
//
//	// Success: the whole snapshot is replaced in one step
//	store.Update(list, nil)
//	→ Clusters, totals replaced; Loaded = true; LastError = nil
//
//	// Failure: previous data stays readable
//	store.Update(nil, err)
//	→ Clusters unchanged; LastError = err; ConsecutiveFailures++
//
// Readers therefore observe either the old or the new snapshot, never a mix.
// Concurrent refreshes are not cancelled; whichever completes last wins.
//
// # Change Notification
//
// Subscribe returns a one-slot channel signalled after every Update. Signals
// coalesce, so a reader that falls behind still wakes up once and then reads
// Current. The UI uses this to re-render without polling the store.
//
// # Errors
//
// Refresh never retries. Failures are returned wrapped in ErrFetchFailed so
// callers can surface a notification and move on.
package state
