// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package pinger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DataDog/datadog-ping/result"
)

func TestStats(t *testing.T) {
	tests := []struct {
		name     string
		samples  []time.Duration
		lost     int
		expected result.Stats
	}{
		{
			name: "nothing sent",
			expected: result.Stats{
				Rtts: []float64{},
			},
		},
		{
			name: "all lost",
			lost: 3,
			expected: result.Stats{
				PacketsSent:          3,
				PacketsLost:          3,
				PacketLossPercentage: 100,
				Rtts:                 []float64{},
			},
		},
		{
			name:    "single sample has no jitter",
			samples: []time.Duration{12500 * time.Microsecond},
			expected: result.Stats{
				PacketsSent:     1,
				PacketsReceived: 1,
				Rtt:             result.Rtt{Min: 12.5, Avg: 12.5, Max: 12.5, Jitter: 0},
				Rtts:            []float64{12.5},
			},
		},
		{
			name:    "jitter is max minus min",
			samples: []time.Duration{20 * time.Millisecond, 5 * time.Millisecond, 11 * time.Millisecond},
			lost:    1,
			expected: result.Stats{
				PacketsSent:          4,
				PacketsReceived:      3,
				PacketsLost:          1,
				PacketLossPercentage: 25,
				Rtt:                  result.Rtt{Min: 5, Avg: 12, Max: 20, Jitter: 15},
				Rtts:                 []float64{20, 5, 11},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Stats
			for _, rtt := range tt.samples {
				s.Record(rtt, true)
			}
			for i := 0; i < tt.lost; i++ {
				s.Record(time.Second, false)
			}
			assert.Equal(t, tt.expected, s.Summary())
			assert.Equal(t, tt.lost, s.Lost())
		})
	}
}

func TestStatsLossPercent(t *testing.T) {
	for sent := 1; sent <= 20; sent++ {
		for received := 0; received <= sent; received++ {
			s := Stats{Sent: sent, Received: received}
			assert.Equal(t, sent-received, s.Lost())
			assert.InDelta(t, float64(sent-received)/float64(sent)*100, s.LossPercent(), 1e-9)
		}
	}
}

func TestStatsLostRecordIgnoresRtt(t *testing.T) {
	var s Stats
	s.Record(42*time.Millisecond, false)
	assert.Empty(t, s.Samples)
	assert.Equal(t, 0.0, s.Jitter())
}
