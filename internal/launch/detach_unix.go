//go:build unix

package launch

import (
	"os/exec"
	"syscall"
)

// detach starts cmd in its own session so the launched application survives
// shorty and never receives its terminal signals.
// Preserves any existing SysProcAttr fields.
func detach(cmd *exec.Cmd) {
	if cmd == nil {
		return
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
}
