//go:build linux || darwin || freebsd || netbsd || openbsd

package main

import (
	"golang.org/x/sys/unix"
)

func tcget(fd uintptr) (*unix.Termios, error) {
	p, err := unix.IoctlGetTermios(int(fd), getTermios)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func isTerminal(fd uintptr) bool {
	_, err := tcget(fd)
	return err == nil
}
