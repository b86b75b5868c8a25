// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

//go:build linux || darwin

package packets

import (
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"
)

func getSockAddr(addr netip.Addr) (unix.Sockaddr, error) {
	addr = addr.Unmap()
	if !addr.Is4() {
		return nil, fmt.Errorf("invalid IPv4 address: %s", addr)
	}
	return &unix.SockaddrInet4{Addr: addr.As4()}, nil
}
