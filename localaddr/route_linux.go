// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

//go:build linux

package localaddr

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/vishvananda/netlink"

	"github.com/DataDog/datadog-ping/log"
)

var (
	routeGet    = netlink.RouteGet
	linkByIndex = netlink.LinkByIndex
	addrList    = netlink.AddrList
)

// routeSource asks the kernel for the route to dst. When the route carries no
// preferred source, the first IPv4 address of its outgoing link is used.
func routeSource(dst netip.Addr) (netip.Addr, error) {
	routes, err := routeGet(dst.AsSlice())
	if err != nil {
		return netip.Addr{}, fmt.Errorf("netlink route lookup failed: %w", err)
	}
	if len(routes) == 0 {
		return netip.Addr{}, fmt.Errorf("netlink returned no routes for %s", dst)
	}

	route := routes[0]
	if src, ok := ipv4FromIP(route.Src); ok {
		return src, nil
	}
	if route.LinkIndex == 0 {
		return netip.Addr{}, fmt.Errorf("route to %s has neither a source nor a link", dst)
	}

	link, err := linkByIndex(route.LinkIndex)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("netlink failed to fetch link %d: %w", route.LinkIndex, err)
	}
	addrs, err := addrList(link, netlink.FAMILY_V4)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("netlink failed to list addrs for link %d: %w", route.LinkIndex, err)
	}
	for _, a := range addrs {
		if src, ok := ipv4FromIP(a.IP); ok {
			log.Tracef("route to %s has no source, using %s from link %d", dst, src, route.LinkIndex)
			return src, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("link %d has no IPv4 address for %s", route.LinkIndex, dst)
}

func ipv4FromIP(ip net.IP) (netip.Addr, bool) {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, false
	}
	addr = addr.Unmap()
	return addr, addr.Is4()
}
