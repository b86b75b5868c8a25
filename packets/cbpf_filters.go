// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package packets

import (
	"fmt"

	"golang.org/x/net/bpf"
)

const icmpTypeOffset = 20 // fixed IPv4 header length

// echoReplyFilter keeps only ICMP Echo Replies. A raw AF_INET socket sees each
// datagram from the IP header on, so the ICMP type sits right after it.
// Without it the socket also receives our own requests when pinging a local address.
var echoReplyFilter = []bpf.Instruction{
	bpf.LoadAbsolute{Off: icmpTypeOffset, Size: 1},
	bpf.JumpIf{Cond: bpf.JumpEqual, Val: 0, SkipFalse: 1},
	bpf.RetConstant{Val: 0x00040000},
	bpf.RetConstant{Val: 0},
}

func getEchoReplyFilter() ([]bpf.RawInstruction, error) {
	raw, err := bpf.Assemble(echoReplyFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble echo reply filter: %w", err)
	}
	return raw, nil
}
