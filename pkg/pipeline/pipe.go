package pipeline

import (
	"fmt"
	"os"
)

// Pipe wraps a single OS pipe — the Go stand-in for the original's raw
// pipe(2) pair. One Pipe connects a sink node to the coalesced set of
// everything writing into it (§4.3 fan-in coalescing: every predecessor of
// a sink shares one Pipe instance).
type Pipe struct {
	Read  *os.File
	Write *os.File
}

// NewPipe opens an OS pipe.
func NewPipe() (*Pipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("pipeline: opening pipe: %w", err)
	}
	return &Pipe{Read: r, Write: w}, nil
}

// String matches the original's Pipe.__repr__ debug rendering, minus the
// object identity suffix Go has no equivalent for.
func (p *Pipe) String() string {
	return fmt.Sprintf("Pipe(read=%d, write=%d)", p.Read.Fd(), p.Write.Fd())
}
