package server

import (
	"errors"
	"io/fs"
	"os"
	"syscall"

	"github.com/Wa4h1h/tftp-codec/pkg/types"
	"golang.org/x/sys/unix"
)

type control func(network, address string, c syscall.RawConn) error

func controlReuseAddr() control {
	return func(network, address string, c syscall.RawConn) error {
		var opErr error
		err := c.Control(func(fd uintptr) {
			opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		})
		if err != nil {
			return err
		}
		return opErr
	}
}

// openErrCode maps a filesystem error to the error packet sent to the peer.
func openErrCode(err error) types.ErrCode {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return types.ErrFileNotFound
	case errors.Is(err, fs.ErrExist):
		return types.ErrFileAlreadyExists
	case errors.Is(err, unix.ENOSPC):
		return types.ErrDiskFull
	default:
		return types.ErrAccessDenied
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, os.ErrDeadlineExceeded)
}
