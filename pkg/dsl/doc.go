// Package dsl transpiles tiniflow DSL text into Go source text that calls
// pkg/runtime. It is the direct translation of tiniflow/dsl.py: the same
// line-oriented, sigil-classified block grammar, the same doubled- and
// single-separator payload splitting, the same temp/perm token rebinding
// cleared at every non-empty block boundary — mapped onto Go's export
// rules and brace-delimited (rather than indentation-delimited) blocks.
package dsl
