// Package config resolves the handful of things the pipeline executor
// needs once at startup and never re-reads: which shell runs each command,
// and the two pre-opened /dev/null file handles that back default control
// channel wiring.
package config
