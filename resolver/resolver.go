// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package resolver maps a host argument to the single IPv4 address a
// session pings
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/DataDog/datadog-ping/common"
	"github.com/DataDog/datadog-ping/log"
)

// lookupNetIPFn is defined as variable to ease testing
var lookupNetIPFn = net.DefaultResolver.LookupNetIP

// Resolve returns the IPv4 address for host. Literals are returned as is,
// names are looked up once and the first IPv4 answer is kept for
// common.DefaultResolveCacheExpiration. Every failure is a *common.ResolutionError.
func Resolve(ctx context.Context, host string) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		if !addr.Is4() {
			return netip.Addr{}, &common.ResolutionError{Host: host, Err: errors.New("only IPv4 destinations are supported")}
		}
		return addr, nil
	}

	addr, err := getWithExpiration(host, func() (netip.Addr, error) {
		return lookupIPv4(ctx, host)
	}, common.DefaultResolveCacheExpiration)
	if err != nil {
		return netip.Addr{}, &common.ResolutionError{Host: host, Err: err}
	}
	return addr, nil
}

func lookupIPv4(ctx context.Context, host string) (netip.Addr, error) {
	addrs, err := lookupNetIPFn(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, err
	}
	for _, addr := range addrs {
		addr = addr.Unmap()
		if addr.Is4() {
			log.Debugf("resolved %s to %s (%d candidates)", host, addr, len(addrs))
			return addr, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("no IPv4 address found")
}
