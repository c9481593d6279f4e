package pipeline

import "os"

// channelFD is one registered wiring: a file descriptor belonging to a
// predecessor/successor pipe, whether it carries the data channel (landing
// on fd 0/1, isData) or an auxiliary control channel (landing in
// ExtraFiles, exported as a TF_<name>_IN/OUT environment variable). It is
// the Go stand-in for flow.py's (fd, isdata, name) tuples in Command.ifds
// and Command.ofds.
type channelFD struct {
	file   *os.File
	isData bool
	name   string
}
