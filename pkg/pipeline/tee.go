package pipeline

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/tiniflow/tiniflow/pkg/config"
)

// Tee fans one predecessor's data channel out to multiple successors. It is
// synthesized by Expand for every out-degree>1 node — the direct analogue
// of flow.py's Tee class: a shell "tee" process that copies its stdin to
// every registered output fd and discards tee's own stdout.
type Tee struct {
	ifds []channelFD
	ofds []channelFD
}

// NewTee returns an empty Tee.
func NewTee() *Tee { return &Tee{} }

func (t *Tee) registerInput(ch channelFD)  { t.ifds = append(t.ifds, ch) }
func (t *Tee) registerOutput(ch channelFD) { t.ofds = append(t.ofds, ch) }

func (t *Tee) outputFiles() []*os.File {
	files := make([]*os.File, 0, len(t.ofds))
	for _, o := range t.ofds {
		files = append(files, o.file)
	}
	return files
}

// build wires the sole predecessor (data or control) onto stdin and every
// output as an ExtraFiles entry after the two pre-opened /dev/null handles,
// then builds the literal "tee /proc/self/fd/<n>... >/dev/null" command
// line from the index-derived fd numbers — exactly as create_xgraph's Tee
// does. Tee never exports TF_* environment variables; the original leaves
// its environ untouched too.
func (t *Tee) build(cfg *config.Config) (*exec.Cmd, error) {
	extraFiles := []*os.File{cfg.DevNullRead, cfg.DevNullWrite}
	args := make([]string, 0, len(t.ofds))
	for _, o := range t.ofds {
		fd := 3 + len(extraFiles)
		extraFiles = append(extraFiles, o.file)
		args = append(args, fmt.Sprintf("/proc/self/fd/%d", fd))
	}

	command := fmt.Sprintf("tee %s >/dev/null", strings.Join(args, " "))
	cmd := exec.Command(cfg.Shell, "-c", command)
	cmd.ExtraFiles = extraFiles
	cmd.Stdout = os.Stdout
	cmd.Env = os.Environ()

	// A Tee has exactly one logical predecessor regardless of which
	// channel (data or control) it was synthesized for — flow.py's
	// Tee.__call__ dup2s every ifd onto fd 0 unconditionally, discarding
	// the isdata flag, since Tee only ever fans out one input.
	if len(t.ifds) > 0 {
		cmd.Stdin = t.ifds[0].file
	}
	return cmd, nil
}

func (t *Tee) String() string {
	return fmt.Sprintf("Tee(ifds=%d, ofds=%d)", len(t.ifds), len(t.ofds))
}
