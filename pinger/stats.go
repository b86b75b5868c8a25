// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package pinger

import (
	"slices"
	"time"

	"github.com/DataDog/datadog-ping/common"
	"github.com/DataDog/datadog-ping/result"
)

// Stats accumulates the outcome of every counted probe of a session
type Stats struct {
	Sent     int
	Received int
	// Samples are round trip times in milliseconds, in send order
	Samples []float64
}

// Record counts one probe, rtt is only used when received is set
func (s *Stats) Record(rtt time.Duration, received bool) {
	s.Sent++
	if received {
		s.Received++
		s.Samples = append(s.Samples, common.MsFromDuration(rtt))
	}
}

// Lost is Sent minus Received
func (s Stats) Lost() int {
	return s.Sent - s.Received
}

// LossPercent is 0 when nothing was sent
func (s Stats) LossPercent() float64 {
	if s.Sent == 0 {
		return 0
	}
	return float64(s.Lost()) / float64(s.Sent) * 100
}

func (s Stats) Min() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	return slices.Min(s.Samples)
}

func (s Stats) Max() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	return slices.Max(s.Samples)
}

func (s Stats) Avg() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, sample := range s.Samples {
		sum += sample
	}
	return sum / float64(len(s.Samples))
}

// Jitter is the spread of the samples, Max minus Min
func (s Stats) Jitter() float64 {
	return s.Max() - s.Min()
}

// Summary converts the counters into their reported form
func (s Stats) Summary() result.Stats {
	return result.Stats{
		PacketsSent:          s.Sent,
		PacketsReceived:      s.Received,
		PacketsLost:          s.Lost(),
		PacketLossPercentage: s.LossPercent(),
		Rtt: result.Rtt{
			Min:    s.Min(),
			Avg:    s.Avg(),
			Max:    s.Max(),
			Jitter: s.Jitter(),
		},
		Rtts: append([]float64{}, s.Samples...),
	}
}
