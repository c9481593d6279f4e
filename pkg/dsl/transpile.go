package dsl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingShebang is returned by Transpile when the source's first line
// is not a shebang. dsl.py's CLI treats this as fatal before any parsing
// begins; the Go transpiler mirrors that as a precondition.
var ErrMissingShebang = errors.New("dsl: source must begin with a shebang line (#!...)")

// runtimeImport is the single import a transpiled program needs, giving
// it access to Node/Edge/Enter/EnterIndex/On/RunDefault.
const runtimeImport = `tf "github.com/tiniflow/tiniflow/pkg/runtime"`

// Options controls prologue/epilogue emission, mirroring the CLI's
// --disable-prologue/--disable-epilogue flags.
type Options struct {
	DisablePrologue bool
	DisableEpilogue bool
	// MetricsAddr, if non-empty, injects a tf.ServeMetrics call at the top
	// of main() so the generated program exposes a Prometheus /metrics
	// endpoint on this address while its executor runs. Mirrors the CLI's
	// --metrics-addr flag; has no effect with DisablePrologue set, since
	// there is no main() to inject the call into.
	MetricsAddr string
}

// Transpile converts tiniflow DSL source into Go source text. filename is
// threaded through to the emitted epilogue call (tf.RunDefault(filename)),
// matching the original passing args.filename to __workflow__.run.
func Transpile(source, filename string, opts Options) (string, error) {
	trimmed := strings.TrimSuffix(source, "\n")
	lines := strings.Split(trimmed, "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "#!") {
		return "", ErrMissingShebang
	}
	shebang := lines[0]
	body := lines[1:]

	var generated strings.Builder
	tr := newTranspiler()
	for _, line := range body {
		translated, err := tr.translate(line)
		if err != nil {
			return "", err
		}
		generated.WriteString(translated)
		generated.WriteString("\n")
	}
	generated.WriteString(tr.closeFramesAbove(0))

	var out strings.Builder
	out.WriteString(shebang)
	out.WriteString("\n")
	if !opts.DisablePrologue {
		out.WriteString("package main\n\n")
		if tr.usesFmt {
			out.WriteString("import (\n\t\"fmt\"\n\n\t" + runtimeImport + "\n)\n\n")
		} else {
			fmt.Fprintf(&out, "import %s\n\n", runtimeImport)
		}
		out.WriteString("func main() {\n")
		if opts.MetricsAddr != "" {
			fmt.Fprintf(&out, "\tif _, err := tf.ServeMetrics(%q); err != nil {\n", opts.MetricsAddr)
			out.WriteString("\t\tpanic(err)\n")
			out.WriteString("\t}\n")
		}
	}

	out.WriteString(generated.String())

	if !opts.DisableEpilogue {
		fmt.Fprintf(&out, "\tif err := tf.RunDefault(%q); err != nil {\n", filename)
		out.WriteString("\t\tpanic(err)\n")
		out.WriteString("\t}\n")
	}
	if !opts.DisablePrologue {
		out.WriteString("}\n")
	}

	return out.String(), nil
}

// workflowFrame tracks one open `>` block: the indent width of the line
// that opened it, used to decide when a later line has dedented out of it.
type workflowFrame struct {
	indent int
}

// transpiler holds the mutable state carried across lines of one source
// file: the live temp/perm rebinds, the regenerated pattern table, and
// the open-workflow-block stack.
type transpiler struct {
	perm     map[string]string
	temp     map[string]string
	patterns *Patterns
	stack    []workflowFrame
	usesFmt  bool
}

func newTranspiler() *transpiler {
	t := &transpiler{perm: map[string]string{}, temp: map[string]string{}}
	t.regenerate()
	return t
}

func (t *transpiler) regenerate() {
	cfg := defaultSigilConfig()
	for k, v := range t.perm {
		applyOverride(&cfg, k, v)
	}
	for k, v := range t.temp {
		applyOverride(&cfg, k, v)
	}
	t.patterns = generatePatterns(cfg)
}

// translate classifies and emits one source line. Blank lines pass
// through untouched. Every other line closes any `>` blocks it has
// dedented out of, gets classified against the current Patterns, and —
// unless it was itself the tempchange line that just set an override —
// clears any live temp rebind so it applies to exactly one following
// block, matching the DSL's stated rebind-scoping rule.
func (t *transpiler) translate(line string) (string, error) {
	if strings.TrimSpace(line) == "" {
		return line, nil
	}

	width := indentWidth(line)
	closing := t.closeFramesAbove(width)

	body, isTemp, err := t.classify(line)
	if err != nil {
		return "", err
	}

	if !isTemp && len(t.temp) > 0 {
		t.temp = map[string]string{}
		t.regenerate()
	}

	return closing + body, nil
}

// closeFramesAbove pops and closes every open `>` block whose header
// indent is at or beyond width, returning the concatenated closing lines.
func (t *transpiler) closeFramesAbove(width int) string {
	var out strings.Builder
	for len(t.stack) > 0 && t.stack[len(t.stack)-1].indent >= width {
		frame := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		out.WriteString(strings.Repeat(" ", frame.indent))
		out.WriteString("}()\n")
	}
	return out.String()
}

func (t *transpiler) classify(line string) (body string, isTemp bool, err error) {
	if m := t.patterns.node.FindStringSubmatch(line); m != nil {
		body, err = t.translateNode(m)
		return body, false, err
	}
	if m := t.patterns.workflow.FindStringSubmatch(line); m != nil {
		body, err = t.translateWorkflow(m)
		return body, false, err
	}
	if m := t.patterns.edge.FindStringSubmatch(line); m != nil {
		body, err = t.translateEdge(m)
		return body, false, err
	}
	if m := t.patterns.tempchange.FindStringSubmatch(line); m != nil {
		body, err = t.translateTempChange(m)
		return body, true, err
	}
	if m := t.patterns.permchange.FindStringSubmatch(line); m != nil {
		body, err = t.translatePermChange(m)
		return body, false, err
	}
	return line, false, nil
}

func (t *transpiler) translateNode(m []string) (string, error) {
	indent := named(t.patterns.node, m, "indent")
	name := named(t.patterns.node, m, "name")
	assign := named(t.patterns.node, m, "assign")
	expr := named(t.patterns.node, m, "expr")

	if assign == ":=" {
		t.usesFmt = true
	}
	pieces := t.patterns.doubled.Split(expr, -1)
	args := []string{renderContent(pieces[0], assign)}
	for _, p := range pieces[1:] {
		args = append(args, fmt.Sprintf("%q", strings.TrimSpace(p)))
	}
	if name == "" {
		name = "_"
	}
	return fmt.Sprintf("%s%s := tf.Node(%s)", indent, name, strings.Join(args, ", ")), nil
}

// translateEdge emits one or more tf.Edge calls for a `%` line.
//
// dsl.py splits an edge's payload on the doubled separator into pieces and
// passes every piece to __edge__ as its own positional chain tuple; the
// original Workflow.add_edge(contents, metadata=(), *args, ...) binds only
// the first two of those (contents, metadata) and silently drops the
// rest, so a line with more than one multi-node piece (e.g. the fan-out
// shorthand `a | b || a | c`) never reaches the graph as written. Since
// pkg/model.Edge models one linear traversal, not a bundle of branches,
// a piece with more than one nodesep token is instead emitted as its own
// tf.Edge call sharing this line's separator classification and tag
// metadata, so the shorthand actually produces the fan-out the separator
// choice implies. A single-token piece is still treated as tag metadata
// (on.failure and friends), exactly as in the original.
func (t *transpiler) translateEdge(m []string) (string, error) {
	indent := named(t.patterns.edge, m, "indent")
	name := named(t.patterns.edge, m, "name")
	expr := named(t.patterns.edge, m, "expr")

	pieces := t.patterns.doubled.Split(expr, -1)

	primarySeps := t.collectSeps(pieces[0])
	primaryChain := t.trimmedSplit(pieces[0])

	var tagRefs []string
	var extraChains [][]string
	var extraSeps [][]byte
	for _, piece := range pieces[1:] {
		tokens := t.trimmedSplit(piece)
		if len(tokens) <= 1 {
			tagRefs = append(tagRefs, rewriteOnRef(tokens[0]))
			continue
		}
		extraChains = append(extraChains, tokens)
		extraSeps = append(extraSeps, t.collectSeps(piece))
	}

	if name == "" {
		name = "_"
	}

	var out strings.Builder
	emit := func(varName string, seps []byte, chain []string) {
		callArgs := []string{sepsLiteral(seps), "[]any{" + strings.Join(chain, ", ") + "}"}
		if len(tagRefs) > 0 {
			callArgs = append(callArgs, "[]any{"+strings.Join(tagRefs, ", ")+"}")
		}
		call := "tf.Edge(" + strings.Join(callArgs, ", ") + ")"
		if varName == "_" {
			fmt.Fprintf(&out, "%sif _, err := %s; err != nil {\n%s\tpanic(err)\n%s}\n", indent, call, indent, indent)
			return
		}
		fmt.Fprintf(&out, "%s%s, err := %s\n", indent, varName, call)
		fmt.Fprintf(&out, "%sif err != nil {\n%s\tpanic(err)\n%s}\n", indent, indent, indent)
		fmt.Fprintf(&out, "%s_ = %s\n", indent, varName)
	}

	emit(name, primarySeps, primaryChain)
	for i, chain := range extraChains {
		emit("_", extraSeps[i], chain)
	}

	return strings.TrimRight(out.String(), "\n"), nil
}

// trimmedSplit splits s on the active single-separator pattern, trimming
// surrounding whitespace from each resulting token.
func (t *transpiler) trimmedSplit(s string) []string {
	items := t.patterns.nodesep.Split(s, -1)
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = strings.TrimSpace(it)
	}
	return out
}

func (t *transpiler) translateWorkflow(m []string) (string, error) {
	indent := named(t.patterns.workflow, m, "indent")
	expr := named(t.patterns.workflow, m, "expr")

	pieces := t.patterns.doubled.Split(expr, -1)
	t.stack = append(t.stack, workflowFrame{indent: indentWidth(indent)})

	if i, err := strconv.Atoi(strings.TrimSpace(pieces[0])); err == nil && i >= 0 {
		return fmt.Sprintf("%[1]sfunc() {\n%[1]s\trestore, err := tf.EnterIndex(%[2]d)\n%[1]s\tif err != nil {\n%[1]s\t\tpanic(err)\n%[1]s\t}\n%[1]s\tdefer restore()", indent, i), nil
	}

	t.usesFmt = true
	key := renderContent(pieces[0], ":=")
	return fmt.Sprintf("%sfunc() {\n%s\tdefer tf.Enter(%s)()", indent, indent, key), nil
}

func (t *transpiler) translateTempChange(m []string) (string, error) {
	indent := named(t.patterns.tempchange, m, "indent")
	name := named(t.patterns.tempchange, m, "name")
	expr := named(t.patterns.tempchange, m, "expr")

	t.temp[name] = expr
	t.regenerate()
	return fmt.Sprintf("%s// temp rebind: %s = %s", indent, name, expr), nil
}

func (t *transpiler) translatePermChange(m []string) (string, error) {
	indent := named(t.patterns.permchange, m, "indent")
	name := named(t.patterns.permchange, m, "name")
	expr := named(t.patterns.permchange, m, "expr")

	t.perm[name] = expr
	t.regenerate()
	return fmt.Sprintf("%s// perm rebind: %s = %s", indent, name, expr), nil
}

// collectSeps returns every separator byte found in piece, trimmed of the
// surrounding whitespace the nodesep pattern also consumes.
func (t *transpiler) collectSeps(piece string) []byte {
	matches := t.patterns.nodesep.FindAllString(piece, -1)
	var seps []byte
	for _, m := range matches {
		seps = append(seps, []byte(strings.TrimSpace(m))...)
	}
	return seps
}

// rewriteOnRef rewrites a metadata token of the DSL's on.<tag> form (e.g.
// on.failure) into a reference into pkg/runtime's On table (tf.On.Failure).
// Tokens that don't match the on.<tag> shape pass through unchanged, so a
// metadata piece can also reference an ordinary Go expression.
func rewriteOnRef(tok string) string {
	rest, ok := strings.CutPrefix(tok, "on.")
	if !ok || rest == "" {
		return tok
	}
	return "tf.On." + strings.ToUpper(rest[:1]) + rest[1:]
}

// sepsLiteral renders seps as the single-group [][]byte literal
// AddEdge's seps[0]-based classification expects.
func sepsLiteral(seps []byte) string {
	bytesLit := make([]string, len(seps))
	for i, b := range seps {
		bytesLit[i] = fmt.Sprintf("%q", rune(b))
	}
	return "[][]byte{{" + strings.Join(bytesLit, ", ") + "}}"
}

// renderContent renders one node/workflow content piece as a Go
// expression. assign == ":=" interpolates {expr} placeholders via
// fmt.Sprintf; assign == "=" (or absent, as with workflow keys forced to
// ":=") renders the content literally.
func renderContent(content, assign string) string {
	if assign == ":=" {
		lit, args := interpolate(content)
		parts := append([]string{fmt.Sprintf("%q", lit)}, args...)
		return "fmt.Sprintf(" + strings.Join(parts, ", ") + ")"
	}
	return fmt.Sprintf("%q", content)
}

// interpolate rewrites {expr} placeholders in content into %v verbs,
// returning the resulting format string and the extracted Go expressions
// in order. Any literal '%' is escaped to '%%' so fmt.Sprintf doesn't
// mistake stray percent signs in the content for verbs.
func interpolate(content string) (string, []string) {
	var b strings.Builder
	var args []string
	i := 0
	for i < len(content) {
		if content[i] == '{' {
			if j := strings.IndexByte(content[i:], '}'); j > 0 {
				expr := content[i+1 : i+j]
				args = append(args, strings.TrimSpace(expr))
				b.WriteString("%v")
				i += j + 1
				continue
			}
		}
		if content[i] == '%' {
			b.WriteString("%%")
		} else {
			b.WriteByte(content[i])
		}
		i++
	}
	return b.String(), args
}
