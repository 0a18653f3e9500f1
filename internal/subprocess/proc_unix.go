//go:build !windows

package subprocess

import (
	"os/exec"
	"syscall"
)

// setProcessGroup starts cmd as the leader of a new process group so that
// tools the CLI spawns can be signalled with it.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup delivers sig to cmd's whole process group, falling back to the
// direct child when the group is gone.
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}

	// Negative pid targets the group led by the child.
	if err := syscall.Kill(-cmd.Process.Pid, sig); err == nil {
		return nil
	}

	return cmd.Process.Signal(sig)
}
