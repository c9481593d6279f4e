package config

import (
	"fmt"
	"os"
)

// DefaultShell is used when the SHELL environment variable is unset.
const DefaultShell = "/bin/sh"

// Config holds executor-wide settings resolved once at startup.
type Config struct {
	// Shell is the interpreter every Command execs with "-c <command>".
	Shell string

	// DevNullRead and DevNullWrite back the default TF_CTRL_IN/TF_CTRL_OUT
	// wiring for any node that isn't otherwise connected on the control
	// channel. Both are intentionally leaked into every child process.
	DevNullRead  *os.File
	DevNullWrite *os.File
}

// Resolve reads SHELL once (falling back to DefaultShell) and opens the two
// /dev/null handles. Callers must call Close when the executor shuts down.
func Resolve() (*Config, error) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = DefaultShell
	}

	r, err := os.OpenFile(os.DevNull, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("config: opening %s for reading: %w", os.DevNull, err)
	}
	w, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("config: opening %s for writing: %w", os.DevNull, err)
	}

	return &Config{Shell: shell, DevNullRead: r, DevNullWrite: w}, nil
}

// Close releases the pre-opened /dev/null handles. Safe to call once.
func (c *Config) Close() error {
	err1 := c.DevNullRead.Close()
	err2 := c.DevNullWrite.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
