// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package reversedns looks up the PTR names of a pinged address
package reversedns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"
)

const reverseDnsDefaultTimeout = 5 * time.Second

// LookupAddrFn is defined as variable to ease testing
var LookupAddrFn = net.DefaultResolver.LookupAddr

// Lookup returns the names addr resolves back to, without the trailing dot.
// The lookup is bounded by ctx and by a default timeout.
func Lookup(ctx context.Context, addr netip.Addr) ([]string, error) {
	if !addr.IsValid() {
		return nil, errors.New("invalid IP address")
	}

	ctx, cancel := context.WithTimeout(ctx, reverseDnsDefaultTimeout)
	defer cancel()
	rawNames, err := LookupAddrFn(ctx, addr.Unmap().String())
	if err != nil {
		return nil, fmt.Errorf("failed to get reverse dns: %w", err)
	}

	names := make([]string, 0, len(rawNames))
	for _, name := range rawNames {
		names = append(names, strings.TrimRight(name, "."))
	}
	return names, nil
}
