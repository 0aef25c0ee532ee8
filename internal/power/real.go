//go:build linux

package power

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// RealSleeper powers the system off through the reboot syscall.
// Requires CAP_SYS_BOOT.
type RealSleeper struct{}

// NewRealSleeper creates a RealSleeper.
func NewRealSleeper() *RealSleeper {
	return &RealSleeper{}
}

// Off syncs filesystems and powers the system off. It only returns on error.
func (*RealSleeper) Off() error {
	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_POWER_OFF); err != nil {
		return fmt.Errorf("power off: %w", err)
	}
	return nil
}
