//go:build linux

package termclient

import "golang.org/x/sys/unix"

// ioctlGetTermios and ioctlSetTermios are the termios ioctl requests,
// which differ between Linux's generic tty layer and the BSD-derived one
// macOS/FreeBSD use.
const (
	ioctlGetTermios = unix.TCGETS
	ioctlSetTermios = unix.TCSETS
)
