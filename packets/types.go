// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package packets owns the raw ICMPv4 socket used to send Echo Requests
// and read back whole IPv4 datagrams
package packets

//go:generate mockgen -source=types.go -destination=mock_types.go -package=packets

import (
	"errors"
	"net/netip"
	"time"
)

// Source reads raw IPv4 datagrams, IP header included
type Source interface {
	// SetReadDeadline sets the deadline for when a Read() call must finish
	SetReadDeadline(t time.Time) error
	// Read reads a single datagram into buf and returns its length
	Read(buf []byte) (int, error)
	// Drain discards the datagrams already queued without waiting and
	// returns how many were dropped
	Drain() (int, error)
	// Close closes the underlying socket
	Close() error
}

// Sink writes ICMP messages, the kernel builds the IPv4 header
type Sink interface {
	// WriteTo writes buf to addr and returns how many bytes the kernel accepted
	WriteTo(buf []byte, addr netip.Addr) (int, error)
	// Close closes the underlying socket
	Close() error
}

// SourceSinkHandle contains a platform's Source and Sink implementation.
// On raw sockets both are backed by the same file descriptor.
type SourceSinkHandle struct {
	Source Source
	Sink   Sink
}

// Close closes the Source and the Sink, once each
func (h SourceSinkHandle) Close() error {
	var errs []error
	if h.Source != nil {
		errs = append(errs, h.Source.Close())
	}
	if h.Sink != nil && !h.sharesSocket() {
		errs = append(errs, h.Sink.Close())
	}
	return errors.Join(errs...)
}

func (h SourceSinkHandle) sharesSocket() bool {
	return any(h.Source) == any(h.Sink)
}
