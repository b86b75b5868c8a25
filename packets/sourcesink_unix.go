// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

//go:build linux || darwin

package packets

import (
	"github.com/DataDog/datadog-ping/log"
)

// NewSourceSink opens a raw ICMPv4 socket and returns it as both Source and Sink.
// Failure to create the socket is returned unclassified, callers check it
// for EPERM/EACCES.
func NewSourceSink() (SourceSinkHandle, error) {
	conn, err := newRawICMPConn()
	if err != nil {
		return SourceSinkHandle{}, err
	}

	err = conn.setEchoReplyFilter()
	if err != nil {
		// matching by identifier still works without the filter
		log.Warnf("raw socket filter not applied: %s", err)
	}

	return SourceSinkHandle{
		Source: conn,
		Sink:   conn,
	}, nil
}
