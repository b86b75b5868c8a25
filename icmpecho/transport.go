// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package icmpecho

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"sync"
	"time"

	"github.com/DataDog/datadog-ping/common"
	"github.com/DataDog/datadog-ping/log"
	"github.com/DataDog/datadog-ping/packets"
)

// readBufferLen fits any IPv4 datagram the socket can hand back
const readBufferLen = 1024

// Transport sends one Echo Request at a time and waits for the first
// datagram that comes back on the raw socket.
type Transport struct {
	open func() (packets.SourceSinkHandle, error)

	// mu serializes exchanges, there is only one read buffer and one socket
	mu       sync.Mutex
	handle   packets.SourceSinkHandle
	opened   bool
	sequence uint16
	buffer   []byte
}

// NewTransport returns a Transport whose socket is opened on first use
func NewTransport() *Transport {
	return newTransport(packets.NewSourceSink)
}

func newTransport(open func() (packets.SourceSinkHandle, error)) *Transport {
	return &Transport{
		open:   open,
		buffer: make([]byte, readBufferLen),
	}
}

func (t *Transport) ensureOpen() error {
	if t.opened {
		return nil
	}
	handle, err := t.open()
	if err != nil {
		if common.IsPermissionError(err) {
			return &common.PermissionDeniedError{Err: err}
		}
		return fmt.Errorf("failed to open ICMP socket: %w", err)
	}
	t.handle = handle
	t.opened = true
	return nil
}

// SendAndWait sends one Echo Request carrying identifier to dst and waits up to
// timeout for a reply. Datagrams still queued from earlier exchanges are
// discarded before sending. It reports the round trip time and true when the first
// datagram received decodes and carries the same identifier. Any other outcome
// within the window (nothing, a malformed datagram, a foreign identifier,
// an unreachable destination) is a loss and reports false with a nil error.
//
// Errors are returned only for failures that should stop a session: missing
// privileges, socket failures, or ctx being canceled while waiting.
func (t *Transport) SendAndWait(ctx context.Context, dst netip.Addr, timeout time.Duration, identifier uint16) (time.Duration, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if err := t.ensureOpen(); err != nil {
		return 0, false, err
	}

	// replies that missed an earlier window would otherwise be read as this one's
	dropped, err := t.handle.Source.Drain()
	if err != nil {
		log.Debugf("failed to drain ICMP socket: %s", err)
	} else if dropped > 0 {
		log.Tracef("dropped %d late datagrams before probing %s", dropped, dst)
	}

	t.sequence++
	req := EchoRequest{Identifier: identifier, Sequence: t.sequence}
	pkt := req.Marshal()
	log.Tracef("sending echo request to %s id=%d seq=%d", dst, req.Identifier, req.Sequence)

	delivered, err := t.write(pkt, dst)
	if err != nil || !delivered {
		return 0, false, err
	}
	start := time.Now()

	source := t.handle.Source
	err = source.SetReadDeadline(start.Add(timeout))
	if err != nil {
		return 0, false, fmt.Errorf("failed to set read deadline: %w", err)
	}

	// cancellation cuts the wait short by moving the deadline to now
	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(done)
		_ = source.SetReadDeadline(time.Now())
	})
	defer func() {
		if !stop() {
			<-done
		}
	}()

	n, err := source.Read(t.buffer)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, false, ctxErr
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		log.Tracef("no reply from %s within %s", dst, timeout)
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read from ICMP socket: %w", err)
	}
	rtt := time.Since(start)

	reply, err := DecodeReply(t.buffer[:n])
	if err != nil {
		log.Debugf("dropping datagram from ICMP socket: %s", err)
		return 0, false, nil
	}
	if !reply.Matches(identifier) {
		log.Tracef("ignored %s with mismatched identifier: expected=%d, actual=%d",
			reply.TypeCode(), identifier, reply.Identifier)
		return 0, false, nil
	}

	log.Tracef("received %s id=%d seq=%d after %s", reply.TypeCode(), reply.Identifier, reply.Sequence, rtt)
	return rtt, true, nil
}

// write hands pkt to the sink until every byte is accepted. An unreachable
// destination is reported as not delivered rather than as an error.
func (t *Transport) write(pkt []byte, dst netip.Addr) (bool, error) {
	for sent := 0; sent < len(pkt); {
		n, err := t.handle.Sink.WriteTo(pkt[sent:], dst)
		if err != nil {
			switch {
			case common.IsUnreachableError(err):
				log.Debugf("echo request to %s not sent: %s", dst, err)
				return false, nil
			case common.IsPermissionError(err):
				return false, &common.PermissionDeniedError{Err: err}
			}
			return false, fmt.Errorf("failed to write echo request: %w", err)
		}
		if n <= 0 {
			return false, fmt.Errorf("failed to write echo request: %w", io.ErrShortWrite)
		}
		sent += n
	}
	return true, nil
}

// Close releases the socket if it was opened
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.opened {
		return nil
	}
	t.opened = false
	return t.handle.Close()
}
