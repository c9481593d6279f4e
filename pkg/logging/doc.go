// Package logging provides structured logging for the pipeline executor,
// built on Go's standard log/slog, the way the teacher lineage
// (thaiyyal/backend/pkg/logging) wraps it. Fields here are scoped to
// process lifecycle (execution id, node, pid, channel) rather than
// workflow-node lifecycle.
package logging
