// Package api provides an HTTP client for the comment clustering service.
//
// # Overview
//
// The clustering service assigns every submitted comment to a cluster of
// semantically similar comments. This package only consumes that service: it
// encodes requests, decodes JSON responses into typed structs, and reports
// failures as wrapped errors. It never computes similarity itself.
//
// # Endpoints
//
//   - GET  /api/clusters          every cluster with its comments
//   - POST /api/comment           submit a comment, returns the assignment
//   - GET  /api/stats             aggregate counters and the similarity threshold
//   - GET  /api/cluster/{id}      one cluster
//   - POST /api/sidebar/refresh   backend-side refresh marker
//   - POST /api/sidebar/upload    multipart form with a single "file" field
//   - GET  /api/sidebar/download  binary export
//   - GET/POST /api/sidebar/settings, GET /api/sidebar/help, GET /api/sidebar/about
//   - GET  /health
//
// # Errors
//
// Non-2xx responses become *StatusError carrying the status code and, when the
// backend sends {"error": "..."}, its message. Transport failures are wrapped
// as "execute request: ..." and malformed bodies as "decode response: ...".
// The client does not retry; callers decide.
//
// # Timestamps
//
// The backend emits naive ISO-8601 timestamps (Python isoformat). Cluster and
// Comment expose Parsed* helpers that accept RFC3339 as well as the naive form,
// interpreted in local time. Unparseable values yield the zero time.
package api
