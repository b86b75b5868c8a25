// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package pinger drives a ping session: one Echo Request at a time at a fixed
// cadence, with loss and latency accounting
package pinger

import (
	"context"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"github.com/DataDog/datadog-ping/common"
	"github.com/DataDog/datadog-ping/localaddr"
	"github.com/DataDog/datadog-ping/log"
	"github.com/DataDog/datadog-ping/resolver"
	"github.com/DataDog/datadog-ping/result"
	"github.com/DataDog/datadog-ping/reversedns"
)

// warmUpIdentifier is reused by the first counted probe
const warmUpIdentifier = 0

type (
	// Config defines how a session sends its probes
	Config struct {
		// Delay is the pause after every probe, 0 sends back to back
		Delay time.Duration
		// Timeout bounds the wait for each reply
		Timeout time.Duration
		// Count is the number of probes to send, negative for no limit
		Count int
		// WarmUp sends one uncounted probe before the first counted one
		WarmUp bool
		// ReverseDNS looks up the names of the resolved address
		ReverseDNS bool
	}

	// Prober sends one Echo Request and waits for its reply, see icmpecho.Transport
	Prober interface {
		SendAndWait(ctx context.Context, dst netip.Addr, timeout time.Duration, identifier uint16) (time.Duration, bool, error)
		Close() error
	}
)

// Validate rejects negative durations
func (c Config) Validate() error {
	if c.Delay < 0 || c.Timeout < 0 {
		return &common.PingError{
			Code:    common.ErrCodeInvalidRequest,
			Message: fmt.Sprintf("delay and timeout must not be negative, got delay=%s timeout=%s", c.Delay, c.Timeout),
		}
	}
	return nil
}

// Session owns the counters of one run against one host. It is not safe
// for concurrent use, apart from Finalize.
type Session struct {
	config Config
	prober Prober

	// Started is called once the host is resolved, before any probe
	Started func(report *result.Report)
	// Progress is called once per counted probe
	Progress func(probe result.Probe)

	resolve       func(ctx context.Context, host string) (netip.Addr, error)
	sourceFor     func(dst netip.Addr) (netip.Addr, error)
	reverseLookup func(ctx context.Context, addr netip.Addr) ([]string, error)

	stats        Stats
	report       *result.Report
	finalizeOnce sync.Once
}

// NewSession returns a session that sends its probes through prober
func NewSession(config Config, prober Prober) *Session {
	return &Session{
		config:        config,
		prober:        prober,
		resolve:       resolver.Resolve,
		sourceFor:     localaddr.SourceFor,
		reverseLookup: reversedns.Lookup,
	}
}

// Run resolves host then probes it until Count probes were sent or ctx is
// done. Cancellation is not an error, even during resolution: the report is
// finalized and marked Interrupted. Resolution, permission and socket failures abort the session
// and no report is returned.
func (s *Session) Run(ctx context.Context, host string) (*result.Report, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	s.report = result.NewReport(result.Params{
		Hostname:   host,
		DelayMs:    int(s.config.Delay.Milliseconds()),
		TimeoutMs:  int(s.config.Timeout.Milliseconds()),
		MaxPackets: s.config.Count,
	})

	dst, err := s.resolve(ctx, host)
	if err != nil {
		if ctx.Err() != nil {
			return s.interrupted(), nil
		}
		return nil, err
	}
	s.describe(ctx, dst)
	if s.Started != nil {
		s.Started(s.report)
	}

	if s.config.WarmUp {
		_, _, err := s.prober.SendAndWait(ctx, dst, s.config.Timeout, warmUpIdentifier)
		if err != nil {
			if ctx.Err() != nil {
				return s.interrupted(), nil
			}
			return nil, err
		}
	}

	identifier := uint16(0)
	for s.config.Count < 0 || s.stats.Sent < s.config.Count {
		rtt, received, err := s.prober.SendAndWait(ctx, dst, s.config.Timeout, identifier)
		if err != nil {
			if ctx.Err() != nil {
				return s.interrupted(), nil
			}
			return nil, err
		}

		s.stats.Record(rtt, received)
		if s.Progress != nil {
			s.Progress(result.Probe{
				Identifier: identifier,
				Target:     dst,
				Received:   received,
				RttMs:      common.MsFromDuration(rtt),
			})
		}
		identifier++

		if !sleep(ctx, s.config.Delay) {
			return s.interrupted(), nil
		}
	}

	return s.Finalize(), nil
}

// describe fills the source and reverse DNS of the report, both best effort
func (s *Session) describe(ctx context.Context, dst netip.Addr) {
	s.report.Destination.IP = dst.String()

	src, err := s.sourceFor(dst)
	if err != nil {
		log.Debugf("could not determine source address for %s: %s", dst, err)
	} else {
		s.report.Source.IP = src.String()
	}
	log.Infof("pinging %s (%s) from %s", s.report.Params.Hostname, dst, s.report.Source.IP)

	if !s.config.ReverseDNS {
		return
	}
	names, err := s.reverseLookup(ctx, dst)
	if err != nil {
		_ = log.Warnf("reverse DNS lookup for %s failed: %s", dst, err)
		return
	}
	s.report.Destination.ReverseDNS = names
}

func (s *Session) interrupted() *result.Report {
	log.Debugf("session interrupted after %d probes", s.stats.Sent)
	report := s.Finalize()
	report.Interrupted = true
	return report
}

// Finalize computes the derived statistics once and returns the same report
// on every call. Calling it before Run returns an empty report.
func (s *Session) Finalize() *result.Report {
	s.finalizeOnce.Do(func() {
		if s.report == nil {
			s.report = result.NewReport(result.Params{MaxPackets: s.config.Count})
		}
		s.report.Stats = s.stats.Summary()
		log.TraceFunc(func() string {
			return fmt.Sprintf("ping stats: %+v", s.report.Stats)
		})
	})
	return s.report
}

// Close releases the prober
func (s *Session) Close() error {
	return s.prober.Close()
}

// sleep waits for d and reports false if ctx was done first
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
