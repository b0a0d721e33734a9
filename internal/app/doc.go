// Package app is the composition root for clusterboard.
//
// Bootstrap loads config, preferences and logging, then builds the API client,
// the cluster store, the toast queue and the submission controller. Both the
// TUI (Run) and the one-shot CLI commands start from the same Env.
//
// Run additionally starts two background tasks:
//
//   - startupProbe: a retried GET /health followed by the initial cluster load.
//     Failures become toasts; neither is fatal.
//   - StartPoller: refreshes the store on a timer. Each consecutive failure
//     doubles the wait, capped at 30s, and only the first failure and the
//     first success afterwards raise a toast.
package app
