package util

import (
	"os/exec"

	"github.com/go-logr/logr"
)

// ExecHelper is a wrapper for executing shell commands.
type ExecHelper struct {
	Log logr.Logger
}

// Run runs and logs stdout/stderr
func (h *ExecHelper) Run(cmd *exec.Cmd) error {
	log := h.Log
	data, err := h.RunQuietly(cmd)
	if err != nil {
		log.Error(err, "Shell command failed", "command", cmd.String(), "dir", cmd.Dir, "output", data)
		return err
	}

	log.V(Debug).Info("Shell Command succeeded", "command", cmd.String(), "dir", cmd.Dir, "output", data)

	return nil
}

// RunQuietly runs without logging stdout/stderr. Use this method when
// you want to let the caller decide whether to log or not. A common
// use case would be when commands failing to run doesn't necessarily
// indicate an error.
func (h *ExecHelper) RunQuietly(cmd *exec.Cmd) (string, error) {
	data, err := cmd.CombinedOutput()
	return string(data), err
}
