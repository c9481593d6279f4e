package pipeline

import (
	"os"
	"os/exec"

	"github.com/tiniflow/tiniflow/pkg/config"
)

// Spawnable is the contract Command and Tee both satisfy, mirroring how
// flow.py treats Command and Tee instances interchangeably as graph nodes:
// both accumulate registered channels and are built into a single process.
type Spawnable interface {
	registerInput(ch channelFD)
	registerOutput(ch channelFD)
	build(cfg *config.Config) (*exec.Cmd, error)

	// outputFiles returns the write ends this process owns, so the
	// executor can close its copies once the process has been reaped —
	// the Go equivalent of Command.close_fds/Tee.close_fds.
	outputFiles() []*os.File

	String() string
}
