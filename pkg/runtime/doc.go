// Package runtime is what a transpiled tiniflow program imports: the Go
// analogue of tiniflow/prologue.py's module-level __node__, __edge__,
// __workflow__, and on bindings. Go's export-visibility rule (an
// identifier is exported only if it starts with an upper-case letter)
// makes a literal double-underscore name like __node__ impossible to
// reach via dot-import, so generated code calls these as ordinary
// package-qualified functions (Node, Edge, Enter, RunDefault) instead of
// bare names — the construct-to-call mapping is unchanged, only the
// calling convention is idiomatic Go.
package runtime
