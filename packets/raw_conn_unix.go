// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

//go:build linux || darwin

package packets

import (
	"net/netip"
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// drainBufferLen fits any IPv4 datagram, the contents are thrown away
const drainBufferLen = 1024

// rawICMPConn is an AF_INET/SOCK_RAW/IPPROTO_ICMP socket. It implements
// both Source and Sink.
type rawICMPConn struct {
	sock    *os.File
	rawConn syscall.RawConn
}

var _ Source = &rawICMPConn{}
var _ Sink = &rawICMPConn{}

func newRawICMPConn() (*rawICMPConn, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_ICMP)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create raw ICMP socket")
	}
	unix.CloseOnExec(fd)

	// the fd must be non-blocking for the runtime poller to honor read deadlines
	err = unix.SetNonblock(fd, true)
	if err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "failed to set raw ICMP socket non-blocking")
	}

	sock := os.NewFile(uintptr(fd), "icmp")
	rawConn, err := sock.SyscallConn()
	if err != nil {
		sock.Close()
		return nil, errors.Wrap(err, "failed to get raw connection")
	}

	return &rawICMPConn{
		sock:    sock,
		rawConn: rawConn,
	}, nil
}

// SetReadDeadline sets the deadline for when a Read() call must finish
func (c *rawICMPConn) SetReadDeadline(t time.Time) error {
	return c.sock.SetReadDeadline(t)
}

// Read reads one datagram. Deadline expiry surfaces as os.ErrDeadlineExceeded.
func (c *rawICMPConn) Read(buf []byte) (int, error) {
	var n int
	var err error
	readErr := c.rawConn.Read(func(fd uintptr) bool {
		n, _, err = unix.Recvfrom(int(fd), buf, 0)
		return !(err == unix.EAGAIN || err == unix.EWOULDBLOCK)
	})
	if readErr != nil {
		return 0, readErr
	}
	if err != nil {
		return 0, errors.Wrap(err, "recvfrom failed")
	}
	return n, nil
}

// Drain reads queued datagrams with MSG_DONTWAIT until the socket is empty.
// It goes through Control so a read deadline left in the past does not
// short-circuit it.
func (c *rawICMPConn) Drain() (int, error) {
	buf := make([]byte, drainBufferLen)
	dropped := 0
	var err error
	ctrlErr := c.rawConn.Control(func(fd uintptr) {
		for {
			_, _, err = unix.Recvfrom(int(fd), buf, unix.MSG_DONTWAIT)
			if err == unix.EINTR {
				continue
			}
			if err != nil {
				return
			}
			dropped++
		}
	})
	if ctrlErr != nil {
		return dropped, errors.Wrap(ctrlErr, "failed to access raw socket")
	}
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return dropped, nil
	}
	return dropped, errors.Wrap(err, "recvfrom failed while draining")
}

// WriteTo sends buf to addr. A datagram socket may accept fewer bytes than
// requested, callers loop on the returned count.
func (c *rawICMPConn) WriteTo(buf []byte, addr netip.Addr) (int, error) {
	sa, err := getSockAddr(addr)
	if err != nil {
		return 0, err
	}

	var n int
	writeErr := c.rawConn.Write(func(fd uintptr) bool {
		n, err = unix.SendmsgN(int(fd), buf, nil, sa, 0)
		return !(err == unix.EAGAIN || err == unix.EWOULDBLOCK)
	})
	if writeErr != nil {
		return 0, errors.Wrap(writeErr, "raw ICMP socket write failed")
	}
	if err != nil {
		return 0, errors.Wrapf(err, "sendmsg to %s failed", addr)
	}
	return n, nil
}

// Close closes the socket
func (c *rawICMPConn) Close() error {
	return c.sock.Close()
}
