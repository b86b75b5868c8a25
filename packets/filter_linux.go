// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

//go:build linux

package packets

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// setEchoReplyFilter attaches the classic BPF echo reply filter to the socket
func (c *rawICMPConn) setEchoReplyFilter() error {
	filter, err := getEchoReplyFilter()
	if err != nil {
		return err
	}
	prog := unix.SockFprog{
		Len:    uint16(len(filter)),
		Filter: (*unix.SockFilter)(unsafe.Pointer(&filter[0])),
	}

	var sockErr error
	err = c.rawConn.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptSockFprog(int(fd), unix.SOL_SOCKET, unix.SO_ATTACH_FILTER, &prog)
	})
	if err != nil {
		return errors.Wrap(err, "failed to access raw socket")
	}
	if sockErr != nil {
		return errors.Wrap(sockErr, "failed to attach echo reply filter")
	}
	return nil
}
