// Package pipeline expands a workflow's data and control graphs into
// child processes and supervises them to completion. It is the direct
// translation of the original tiniflow/flow.py onto Go's process-creation
// primitives: os/exec.Cmd stands in for fork+dup2+execvpe, and a
// goroutine-per-child fan-in onto one channel stands in for a parent
// looping on waitpid(-1, 0).
package pipeline
