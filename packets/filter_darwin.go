// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

//go:build darwin

package packets

// setEchoReplyFilter is a no-op, darwin has no socket filters on raw sockets.
// Replies are still matched by identifier.
func (c *rawICMPConn) setEchoReplyFilter() error {
	return nil
}
