// Package persist provides auto-save sinks for timeline exports.
//
// Two implementations are included: File, which atomically replaces a
// single export file on disk, and SQLite, which appends keyed save rows to
// a database and can prune old ones. Both satisfy timeline.Sink; both also
// load saves back for session restore.
package persist
