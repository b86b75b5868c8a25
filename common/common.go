// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package common contains defaults and error types shared by the
// packet codec, the echo transport and the ping session
package common

import "time"

const (
	// DefaultWarmUp sends the uncounted warm-up probe unless --no-warmup is given
	DefaultWarmUp = true

	// DefaultResolveCacheExpiration bounds how long a resolved host
	// address is reused
	DefaultResolveCacheExpiration = 60 * time.Second
)

// MsFromDuration converts a duration to fractional milliseconds
func MsFromDuration(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
