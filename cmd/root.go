// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package cmd implements the datadog-ping command line
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DataDog/datadog-ping/common"
	"github.com/DataDog/datadog-ping/icmpecho"
	"github.com/DataDog/datadog-ping/log"
	"github.com/DataDog/datadog-ping/pinger"
	"github.com/DataDog/datadog-ping/result"
)

const (
	insufficientArgsMsg = "Error: Insufficient arguments provided."
	invalidIntegersMsg  = "Error: Delay, timeout, and max packets must be integers."
)

var errInvalidIntegers = errors.New("positional arguments must be non-negative integers")

type args struct {
	verbose    bool
	logLevel   string
	json       bool
	noWarmUp   bool
	reverseDns bool
}

// positional holds <host> <delay_ms> <timeout_ms> [max_packets]
type positional struct {
	host       string
	delayMs    int
	timeoutMs  int
	maxPackets int
}

// newProberFn is defined as variable to ease testing
var newProberFn = func() pinger.Prober {
	return icmpecho.NewTransport()
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	a := &args{}
	cmd := &cobra.Command{
		Use:   "datadog-ping <host> <delay_ms> <timeout_ms> [max_packets]",
		Short: "High frequency ICMP echo ping",
		Long: "Sends ICMP Echo Requests to <host> over a raw socket, one at a time, waiting up to\n" +
			"<timeout_ms> for each reply and <delay_ms> between requests. Without [max_packets]\n" +
			"it runs until interrupted. Raw sockets need root or CAP_NET_RAW.",
		Example: "  datadog-ping 8.8.8.8 100 1000\n" +
			"  datadog-ping 9.9.9.9 1000 100 4",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, positionals []string) error {
			return runPing(cmd, a, positionals)
		},
	}

	// flags go before <host>, so a negative number is reported as a bad argument
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose")
	cmd.Flags().StringVarP(&a.logLevel, "log-level", "", "", "Log level (error, warn, info, debug, trace)")
	cmd.Flags().BoolVarP(&a.json, "json", "", false, "Print the final report as JSON")
	cmd.Flags().BoolVarP(&a.noWarmUp, "no-warmup", "", !common.DefaultWarmUp, "Skip the uncounted warm-up probe")
	cmd.Flags().BoolVarP(&a.reverseDns, "reverse-dns", "", false, "Enrich the destination with Reverse DNS names")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func runPing(cmd *cobra.Command, a *args, positionals []string) error {
	out := cmd.OutOrStdout()

	if len(positionals) > 0 && positionals[0] == "/?" {
		printUsage(out)
		return nil
	}
	if len(positionals) < 3 {
		fmt.Fprintln(out, insufficientArgsMsg)
		printUsage(out)
		return nil
	}
	pos, err := parsePositional(positionals)
	if err != nil {
		log.Debugf("%s", err)
		fmt.Fprintln(out, invalidIntegersMsg)
		printUsage(out)
		return nil
	}

	err = setupLogging(a)
	if err != nil {
		return err
	}

	config := pinger.Config{
		Delay:      time.Duration(pos.delayMs) * time.Millisecond,
		Timeout:    time.Duration(pos.timeoutMs) * time.Millisecond,
		Count:      pos.maxPackets,
		WarmUp:     !a.noWarmUp,
		ReverseDNS: a.reverseDns,
	}

	prober := newProberFn()
	session := pinger.NewSession(config, prober)
	defer func() {
		if err := session.Close(); err != nil {
			log.Debugf("failed to close prober: %s", err)
		}
	}()

	if !a.json {
		session.Started = func(report *result.Report) {
			fmt.Fprintln(out, report.Params.Banner())
		}
		session.Progress = func(probe result.Probe) {
			fmt.Fprintln(out, probe.String())
		}
	}

	report, err := session.Run(cmd.Context(), pos.host)
	if err != nil {
		return err
	}
	if a.json {
		return report.WriteJSON(out)
	}
	return report.WriteStatistics(out)
}

func setupLogging(a *args) error {
	if a.logLevel != "" {
		level, err := log.ParseLogLevel(a.logLevel)
		if err != nil {
			return &common.PingError{Code: common.ErrCodeInvalidRequest, Message: err.Error(), Err: err}
		}
		log.SetLogLevel(level)
	}
	if a.verbose {
		log.SetVerbose(true)
	}
	return nil
}

// parsePositional reads the positional arguments, anything past max_packets is ignored
func parsePositional(positionals []string) (positional, error) {
	pos := positional{host: positionals[0], maxPackets: -1}

	values := []*int{&pos.delayMs, &pos.timeoutMs, &pos.maxPackets}
	for i, raw := range positionals[1:min(len(positionals), 4)] {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return positional{}, fmt.Errorf("%w: %q", errInvalidIntegers, raw)
		}
		*values[i] = n
	}
	return pos, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: datadog-ping <host> <delay_ms> <timeout_ms> [max_packets]")
	fmt.Fprintln(w, "Example 1: datadog-ping 8.8.8.8 100 1000")
	fmt.Fprintln(w, "Example 2: datadog-ping 9.9.9.9 1000 100 4")
}

// Execute runs the root command. SIGINT and SIGTERM stop the session, which
// still prints its statistics and exits 0. Fatal errors map to common.ExitCode.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(common.ExitCode(err))
	}
}
