// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

//go:build !darwin && !linux

package packets

import (
	"fmt"
	"runtime"
)

// NewSourceSink returns a Source and Sink implementation for this platform
func NewSourceSink() (SourceSinkHandle, error) {
	return SourceSinkHandle{}, fmt.Errorf("NewSourceSink: raw ICMP sockets are not supported on %s", runtime.GOOS)
}
