// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

//go:build !linux

package localaddr

import (
	"errors"
	"net/netip"
)

func routeSource(_ netip.Addr) (netip.Addr, error) {
	return netip.Addr{}, errors.New("netlink route lookup unsupported on this platform")
}
