package pipeline

import (
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/tiniflow/tiniflow/pkg/config"
)

// Command is one shell command node, ready to be wired with input/output
// channels before build. It is the direct analogue of flow.py's Command
// class, minus the fork()+dup2()+execvpe() sequence that exec.Cmd performs
// internally.
type Command struct {
	Contents string

	ifds []channelFD
	ofds []channelFD
}

// NewCommand returns a Command for contents, with no channels registered.
func NewCommand(contents string) *Command {
	return &Command{Contents: contents}
}

func (c *Command) registerInput(ch channelFD)  { c.ifds = append(c.ifds, ch) }
func (c *Command) registerOutput(ch channelFD) { c.ofds = append(c.ofds, ch) }

func (c *Command) outputFiles() []*os.File {
	files := make([]*os.File, 0, len(c.ofds))
	for _, o := range c.ofds {
		files = append(files, o.file)
	}
	return files
}

// build constructs the *exec.Cmd. The data channel's input/output land on
// Stdin/Stdout, defaulting to the tiniflow process's own Stdin/Stdout when
// nothing registered one — exec.Cmd defaults an unset Stdin/Stdout to
// /dev/null, which would silently break an unconnected node's fd
// inheritance from a real fork(). Every non-data channel lands in
// ExtraFiles; its child-side fd (3+index) is exported via
// <name>_IN/<name>_OUT. The two pre-opened /dev/null handles are always
// appended first, so TF_CTRL_IN/OUT have a real fd to default to even when
// nothing overrides them (§5: "leaked intentionally into every child").
func (c *Command) build(cfg *config.Config) (*exec.Cmd, error) {
	cmd := exec.Command(cfg.Shell, "-c", c.Contents)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	env := map[string]string{
		"TF_DATA_IN":  "0",
		"TF_DATA_OUT": "1",
	}

	cmd.ExtraFiles = append(cmd.ExtraFiles, cfg.DevNullRead, cfg.DevNullWrite)
	env["TF_CTRL_IN"] = fmt.Sprintf("%d", 3)
	env["TF_CTRL_OUT"] = fmt.Sprintf("%d", 4)

	for _, in := range c.ifds {
		if in.isData {
			cmd.Stdin = in.file
			continue
		}
		fd := 3 + len(cmd.ExtraFiles)
		cmd.ExtraFiles = append(cmd.ExtraFiles, in.file)
		env[in.name+"_IN"] = fmt.Sprintf("%d", fd)
	}
	for _, out := range c.ofds {
		if out.isData {
			cmd.Stdout = out.file
			continue
		}
		fd := 3 + len(cmd.ExtraFiles)
		cmd.ExtraFiles = append(cmd.ExtraFiles, out.file)
		env[out.name+"_OUT"] = fmt.Sprintf("%d", fd)
	}

	cmd.Env = append(os.Environ(), envSlice(env)...)
	return cmd, nil
}

func (c *Command) String() string {
	return fmt.Sprintf("Command(%q)", c.Contents)
}

// envSlice flattens a key->value map into NAME=value pairs in sorted key
// order, so a Command's env is deterministic across runs.
func envSlice(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return out
}
