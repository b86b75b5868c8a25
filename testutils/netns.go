// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

//go:build test && linux

// Package testutils runs tests against real sockets inside throwaway network namespaces
package testutils

import (
	"fmt"
	"runtime"

	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"
)

// WithNS executes the given function in the given network namespace, and then
// switches back to the previous namespace.
func WithNS(ns netns.NsHandle, fn func() error) error {
	if ns == netns.None() {
		return fn()
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	prevNS, err := netns.Get()
	if err != nil {
		return err
	}
	defer prevNS.Close()

	if ns.Equal(prevNS) {
		return fn()
	}

	if err := netns.Set(ns); err != nil {
		return err
	}

	fnErr := fn()
	nsErr := netns.Set(prevNS)
	if fnErr != nil {
		return fnErr
	}
	return nsErr
}

// WithLoopbackNS runs fn in a new network namespace whose only interface is
// an up loopback. Sockets opened by fn live in that namespace. Requires root.
func WithLoopbackNS(fn func() error) error {
	ns, err := newNS()
	if err != nil {
		return err
	}
	defer ns.Close()

	return WithNS(ns, func() error {
		lo, err := netlink.LinkByName("lo")
		if err != nil {
			return fmt.Errorf("failed to find loopback: %w", err)
		}
		if err := netlink.LinkSetUp(lo); err != nil {
			return fmt.Errorf("failed to bring loopback up: %w", err)
		}
		return fn()
	})
}

// AddDummyLink adds an up dummy interface carrying cidr. Packets routed to it
// are dropped without an error, which makes any other address in cidr a
// silent destination.
func AddDummyLink(name string, cidr string) error {
	addr, err := netlink.ParseAddr(cidr)
	if err != nil {
		return err
	}
	link := &netlink.Dummy{LinkAttrs: netlink.LinkAttrs{Name: name}}
	if err := netlink.LinkAdd(link); err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if err := netlink.AddrAdd(link, addr); err != nil {
		return fmt.Errorf("failed to add %s to %s: %w", cidr, name, err)
	}
	return netlink.LinkSetUp(link)
}

// newNS creates a namespace without leaving the calling thread in it
func newNS() (netns.NsHandle, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	prevNS, err := netns.Get()
	if err != nil {
		return netns.None(), err
	}
	defer prevNS.Close()

	ns, err := netns.New()
	if err != nil {
		return netns.None(), fmt.Errorf("failed to create network namespace: %w", err)
	}
	if err := netns.Set(prevNS); err != nil {
		ns.Close()
		return netns.None(), err
	}
	return ns, nil
}
