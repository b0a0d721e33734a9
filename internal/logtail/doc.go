// Package logtail reads the tail of clusterboard's log file.
//
// Read keeps a ring buffer of the last N lines so memory stays bounded no
// matter how large the file grows. ReadLevel additionally drops entries below
// a minimum slog level, and Colorize tints lines for terminal output.
package logtail
