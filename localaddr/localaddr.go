// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package localaddr finds the local address probes to a destination leave from
package localaddr

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/DataDog/datadog-ping/log"
)

// dialPort is only used to let the kernel pick a route, nothing is sent
const dialPort = 9

// SourceFor returns the local IPv4 address the kernel would use to reach dst.
// The routing table is asked first where supported, then a connected UDP
// socket is used as a fallback.
func SourceFor(dst netip.Addr) (netip.Addr, error) {
	if !dst.Is4() && !dst.Is4In6() {
		return netip.Addr{}, fmt.Errorf("source lookup needs an IPv4 destination, got %q", dst)
	}
	dst = dst.Unmap()

	src, err := routeSource(dst)
	if err != nil {
		log.Tracef("route lookup for %s failed, falling back to a UDP dial: %s", dst, err)
		src, err = dialSource(dst)
		if err != nil {
			return netip.Addr{}, err
		}
	}
	return normalizeLoopbackSource(dst, src), nil
}

func dialSource(dst netip.Addr) (netip.Addr, error) {
	conn, err := net.DialUDP("udp4", nil, net.UDPAddrFromAddrPort(netip.AddrPortFrom(dst, dialPort)))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to dial %s: %w", dst, err)
	}
	defer conn.Close()

	localUDPAddr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return netip.Addr{}, fmt.Errorf("invalid address type for %s: want %T, got %T", conn.LocalAddr(), localUDPAddr, conn.LocalAddr())
	}
	return localUDPAddr.AddrPort().Addr().Unmap(), nil
}

// On macOS a loopback destination may still report a non-loopback local address
func normalizeLoopbackSource(dst netip.Addr, src netip.Addr) netip.Addr {
	if dst.IsLoopback() && !src.IsLoopback() {
		return netip.AddrFrom4([4]byte{127, 0, 0, 1})
	}
	return src
}
