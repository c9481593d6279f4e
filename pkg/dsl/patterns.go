package dsl

import (
	"fmt"
	"regexp"
	"strings"
)

// sigilConfig holds the sigil/separator values a rebind line can change.
// dsl.py's generate_patterns only ever wires a nodesep keyword through;
// this widens it to node/edge/workflow too, since the DSL's own rebind
// construct is documented as covering all of these token fields.
type sigilConfig struct {
	node     string
	edge     string
	workflow string
	nodesep  string
}

func defaultSigilConfig() sigilConfig {
	return sigilConfig{node: "*", edge: "%", workflow: ">", nodesep: "[|-]"}
}

func applyOverride(cfg *sigilConfig, name, value string) {
	switch name {
	case "node":
		cfg.node = value
	case "edge":
		cfg.edge = value
	case "workflow":
		cfg.workflow = value
	case "nodesep", "separator":
		cfg.nodesep = value
	}
}

// Patterns is the compiled regex table for one point in the DSL stream,
// the Go analogue of generate_patterns' return value. A fresh table is
// built after every non-empty block whose rebind changes are still live,
// mirroring dsl.py regenerating p = generate_patterns(...) on each
// temp/perm change.
type Patterns struct {
	node       *regexp.Regexp
	edge       *regexp.Regexp
	workflow   *regexp.Regexp
	tempchange *regexp.Regexp
	permchange *regexp.Regexp
	nodesep    *regexp.Regexp
	doubled    *regexp.Regexp
}

func group(name, pat string) string    { return fmt.Sprintf("(?P<%s>%s)", name, pat) }
func optGroup(name, pat string) string { return fmt.Sprintf("(?P<%s>%s)?", name, pat) }

// generatePatterns compiles a Patterns table for the given sigil
// configuration.
func generatePatterns(cfg sigilConfig) *Patterns {
	const (
		indentClass = `[ \t]*`
		nameClass   = `\w+`
		assignClass = `:?=`
		exprClass   = `.+`
	)

	indent := group("indent", indentClass)
	name := optGroup("name", nameClass)
	assign := group("assign", assignClass)
	expr := group("expr", exprClass)

	nodeSigil := regexp.QuoteMeta(cfg.node)
	edgeSigil := regexp.QuoteMeta(cfg.edge)
	workflowSigil := regexp.QuoteMeta(cfg.workflow)
	tempSigil := regexp.QuoteMeta("$")
	permSigil := regexp.QuoteMeta("$$")
	nodesepSigil := cfg.nodesep
	doubledSigil := nodesepSigil + nodesepSigil

	assignLine := func(sigil string) string {
		return "^" + indent + sigil + `\s*` + name + `\s*` + assign + `\s*` + expr + "$"
	}

	workflowLine := "^" + indent + workflowSigil + `\s*` + expr + "$"

	return &Patterns{
		node:       regexp.MustCompile(assignLine(nodeSigil)),
		edge:       regexp.MustCompile(assignLine(edgeSigil)),
		workflow:   regexp.MustCompile(workflowLine),
		tempchange: regexp.MustCompile(assignLine(tempSigil)),
		permchange: regexp.MustCompile(assignLine(permSigil)),
		nodesep:    regexp.MustCompile(`\s*` + nodesepSigil + `\s*`),
		doubled:    regexp.MustCompile(`\s*` + doubledSigil + `\s*`),
	}
}

// named returns the captured value of group name from a FindStringSubmatch
// result produced by re, or "" if the group didn't participate.
func named(re *regexp.Regexp, m []string, name string) string {
	for i, n := range re.SubexpNames() {
		if n == name && i < len(m) {
			return m[i]
		}
	}
	return ""
}

// indentWidth measures a raw line's leading-whitespace width, used for the
// `>` block indentation stack independent of any sigil match.
func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
