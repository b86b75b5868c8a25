// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package result holds the outcome of a ping session and renders it
package result

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/netip"

	"github.com/google/uuid"
)

type (
	// Report is the finalized outcome of a single ping session
	Report struct {
		SessionID   string      `json:"session_id"`
		Params      Params      `json:"params"`
		Source      Source      `json:"source"`
		Destination Destination `json:"destination"`
		Stats       Stats       `json:"stats"`
		// Interrupted is set when the session was canceled before Count probes
		Interrupted bool `json:"interrupted"`
	}

	// Params echoes the request that produced the report
	Params struct {
		Hostname  string `json:"hostname"`
		DelayMs   int    `json:"delay_ms"`
		TimeoutMs int    `json:"timeout_ms"`
		// MaxPackets is negative for an unbounded session
		MaxPackets int `json:"max_packets"`
	}

	// Source contains the local address probes leave from, when known
	Source struct {
		IP string `json:"ip,omitempty"`
	}

	// Destination contains the resolved target
	Destination struct {
		IP         string   `json:"ip"`
		ReverseDNS []string `json:"reverse_dns,omitempty"`
	}

	// Stats are the counters and latency figures of a session
	Stats struct {
		PacketsSent          int     `json:"packets_sent"`
		PacketsReceived      int     `json:"packets_received"`
		PacketsLost          int     `json:"packets_lost"`
		PacketLossPercentage float64 `json:"packet_loss_percentage"`
		Rtt                  Rtt     `json:"latency"`
		// Rtts are the matched round trip times in milliseconds, in send order
		Rtts []float64 `json:"rtts"`
	}

	// Rtt summarizes Rtts, all values in milliseconds. Jitter is Max minus Min.
	Rtt struct {
		Min    float64 `json:"min"`
		Avg    float64 `json:"avg"`
		Max    float64 `json:"max"`
		Jitter float64 `json:"jitter"`
	}

	// Probe is the outcome of one counted Echo Request
	Probe struct {
		Identifier uint16
		Target     netip.Addr
		Received   bool
		// RttMs is only meaningful when Received is set
		RttMs float64
	}
)

// NewReport returns an empty report with a fresh session id
func NewReport(params Params) *Report {
	return &Report{
		SessionID: newSessionID(),
		Params:    params,
		Stats:     Stats{Rtts: []float64{}},
	}
}

// String renders the console line for the probe
func (p Probe) String() string {
	if !p.Received {
		return "Request timed out."
	}
	return fmt.Sprintf("Reply from %s: time=%dms", p.Target, int(p.RttMs))
}

// Banner is the line printed before the first probe
func (p Params) Banner() string {
	msg := fmt.Sprintf("Pinging %s with %dms delay, %dms timeout", p.Hostname, p.DelayMs, p.TimeoutMs)
	if p.MaxPackets >= 0 {
		msg += fmt.Sprintf(", and max %d packets", p.MaxPackets)
	} else {
		msg += ", and unlimited packets"
	}
	return msg + " (Ctrl+C to stop):"
}

// WriteStatistics writes the closing statistics block
func (r *Report) WriteStatistics(w io.Writer) error {
	s := r.Stats
	_, err := fmt.Fprintf(w, "\n--- %s ping statistics ---\n"+
		"%d packets transmitted, %d packets received, %d packets lost (%.2f%% loss)\n"+
		"round-trip min/avg/max/jitter = %.2f/%.2f/%.2f/%.2f ms\n",
		r.Params.Hostname,
		s.PacketsSent, s.PacketsReceived, s.PacketsLost, s.PacketLossPercentage,
		s.Rtt.Min, s.Rtt.Avg, s.Rtt.Max, s.Rtt.Jitter,
	)
	return err
}

// WriteJSON writes the report as indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// newSessionID is a random UUID in unpadded URL-safe base64, 22 characters
func newSessionID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}
