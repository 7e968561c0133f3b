package proc

import (
	"fmt"
	"syscall"

	"github.com/rileyhilliard/vitals/internal/errors"
)

// Terminate sends SIGTERM to the process, once. It never escalates to
// SIGKILL and never retries, so the target keeps the chance to catch
// the signal and shut down cleanly. The error distinguishes a process
// that is already gone from one the user may not signal.
func Terminate(pid int32) error {
	err := syscall.Kill(int(pid), syscall.SIGTERM)
	switch err {
	case nil:
		return nil
	case syscall.ESRCH:
		return errors.New(errors.ErrVanished,
			fmt.Sprintf("Process %d no longer exists", pid),
			"It exited on its own; the table will catch up next refresh")
	case syscall.EPERM:
		return errors.New(errors.ErrPermission,
			fmt.Sprintf("Not allowed to signal process %d", pid),
			"Processes owned by other users need elevated privileges")
	default:
		return errors.Wrap(err, fmt.Sprintf("cannot signal process %d", pid))
	}
}
