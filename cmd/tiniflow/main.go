// Command tiniflow transpiles a tiniflow DSL script into a standalone Go
// program that builds and runs its process-pipeline workflow.
//
// Usage:
//
//	tiniflow [flags] <script.tf>
//
// Flags:
//
//	-disable-prologue
//	    Omit the generated package/import/func main() wrapper, emitting a
//	    bare statement sequence to splice into an existing function.
//	-disable-epilogue
//	    Omit the trailing tf.RunDefault call, so the caller decides when
//	    (or whether) to run the declared workflows.
//	-metrics-addr string
//	    If set, inject a tf.ServeMetrics call so the generated program
//	    exposes a Prometheus /metrics endpoint on this address while its
//	    executor runs. Off by default; has no effect with -disable-prologue.
//	-log-level string
//	    tiniflow's own diagnostic log level: debug, info, warn, error (default "info")
//	-log-pretty
//	    Use a human-readable text log handler instead of JSON
//
// Example:
//
//	# Transpile a script to stdout
//	tiniflow examples/s2_linear_pipeline.tf > pipeline.go
//
//	# Transpile a fragment for splicing into a larger program
//	tiniflow -disable-prologue -disable-epilogue fragment.tf
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tiniflow/tiniflow/pkg/dsl"
	"github.com/tiniflow/tiniflow/pkg/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newFlagSet(stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("tiniflow", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: tiniflow [flags] <script.tf>")
		fs.PrintDefaults()
	}
	return fs
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(stderr)

	disablePrologue := fs.Bool("disable-prologue", false, "omit the import/func main() wrapper")
	disableEpilogue := fs.Bool("disable-epilogue", false, "omit the trailing tf.RunDefault call")
	metricsAddr := fs.String("metrics-addr", "", "expose a Prometheus /metrics endpoint on this address from the generated program")
	logLevel := fs.String("log-level", "info", "tiniflow's own diagnostic log level: debug, info, warn, error")
	logPretty := fs.Bool("log-pretty", false, "use a human-readable text log handler instead of JSON")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	log := logging.New(logging.Config{Level: *logLevel, Output: stderr, Pretty: *logPretty})

	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "tiniflow: expected exactly one script argument")
		fs.Usage()
		return 2
	}
	filename := fs.Arg(0)

	source, err := os.ReadFile(filename)
	if err != nil {
		log.WithError(err).Error("reading script")
		fmt.Fprintf(stderr, "tiniflow: %v\n", err)
		return 1
	}

	out, err := dsl.Transpile(string(source), filename, dsl.Options{
		DisablePrologue: *disablePrologue,
		DisableEpilogue: *disableEpilogue,
		MetricsAddr:     *metricsAddr,
	})
	if err != nil {
		log.WithError(err).Error("transpiling script")
		fmt.Fprintf(stderr, "tiniflow: %v\n", err)
		return 1
	}

	fmt.Fprint(stdout, out)
	return 0
}
