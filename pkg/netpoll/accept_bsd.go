//go:build darwin || freebsd

package netpoll

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// darwin has no accept4; the fork lock keeps the descriptor from leaking
// into a child between accept and FD_CLOEXEC.
func accept(fd int) (int, unix.Sockaddr, error) {
	syscall.ForkLock.RLock()
	nfd, sa, err := unix.Accept(fd)
	if err == nil {
		unix.CloseOnExec(nfd)
	}
	syscall.ForkLock.RUnlock()
	if err != nil {
		return -1, nil, err
	}
	if err := unix.SetNonblock(nfd, true); err != nil {
		unix.Close(nfd)
		return -1, nil, err
	}
	return nfd, sa, nil
}
