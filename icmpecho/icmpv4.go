// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package icmpecho builds ICMPv4 Echo Requests, decodes Echo Replies and
// runs a single timed request/reply exchange over a raw socket
package icmpecho

import (
	"encoding/binary"
	"fmt"

	"github.com/google/gopacket/layers"

	"github.com/DataDog/datadog-ping/common"
)

const (
	// HeaderLen is the size of the ICMP echo header
	HeaderLen = 8
	// PayloadLen is the size of the filler block following the header
	PayloadLen = 192
	// PacketLen is the size of an encoded Echo Request
	PacketLen = HeaderLen + PayloadLen
	// MinReplyLen is the fixed IPv4 header plus the ICMP echo header
	MinReplyLen = ipv4HeaderLen + HeaderLen

	ipv4HeaderLen = 20
	payloadFiller = 'Q'
)

// ErrMalformedPacket is returned by DecodeReply for datagrams shorter than MinReplyLen
var ErrMalformedPacket = common.ErrMalformedPacket

type (
	// EchoRequest is the header of an outgoing ICMP Echo Request
	EchoRequest struct {
		Identifier uint16
		Sequence   uint16
	}

	// EchoReply holds the ICMP header fields read from a received datagram
	EchoReply struct {
		Type       uint8
		Code       uint8
		Checksum   uint16
		Identifier uint16
		Sequence   uint16
	}
)

// Marshal returns the wire bytes of the request, see Encode
func (r EchoRequest) Marshal() []byte {
	return Encode(r.Identifier, r.Sequence)
}

// TypeCode returns the ICMP type and code of the reply
func (r EchoReply) TypeCode() layers.ICMPv4TypeCode {
	return layers.CreateICMPv4TypeCode(r.Type, r.Code)
}

// Matches reports whether the reply belongs to the request carrying identifier.
// The sequence number is deliberately not compared.
func (r EchoReply) Matches(identifier uint16) bool {
	return r.Identifier == identifier
}

// Encode builds an Echo Request: the 8 byte header followed by the filler payload.
// The checksum is computed over the whole packet with the checksum field zeroed
// and then written in network byte order.
func Encode(identifier uint16, sequence uint16) []byte {
	buf := make([]byte, PacketLen)
	buf[0] = layers.ICMPv4TypeEchoRequest
	buf[1] = 0
	binary.BigEndian.PutUint16(buf[4:], identifier)
	binary.BigEndian.PutUint16(buf[6:], sequence)
	for i := HeaderLen; i < PacketLen; i++ {
		buf[i] = payloadFiller
	}

	binary.BigEndian.PutUint16(buf[2:], Checksum(buf))
	return buf
}

// Checksum computes the RFC 1071 Internet checksum of data.
//
// Words are accumulated low byte first into a wrapping 32-bit sum, an odd
// trailing byte counts as a zero padded word, and carries are folded back until
// the sum fits in 16 bits. The complemented result is byte swapped so that it
// can be written big-endian regardless of host order. Running Checksum over a
// packet that carries a valid checksum yields 0.
func Checksum(data []byte) uint16 {
	var sum uint32
	even := len(data) &^ 1
	for i := 0; i < even; i += 2 {
		sum += uint32(data[i+1])<<8 | uint32(data[i])
	}
	if even < len(data) {
		sum += uint32(data[even])
	}

	for sum>>16 != 0 {
		sum = sum>>16 + sum&0xffff
	}

	answer := ^sum & 0xffff
	return uint16(answer>>8 | answer<<8&0xff00)
}

// DecodeReply reads the ICMP echo header that follows a fixed 20 byte IPv4 header.
// The IHL field is not consulted.
func DecodeReply(datagram []byte) (EchoReply, error) {
	if len(datagram) < MinReplyLen {
		return EchoReply{}, fmt.Errorf("%w: got %d bytes, need %d", ErrMalformedPacket, len(datagram), MinReplyLen)
	}

	hdr := datagram[ipv4HeaderLen:MinReplyLen]
	return EchoReply{
		Type:       hdr[0],
		Code:       hdr[1],
		Checksum:   binary.BigEndian.Uint16(hdr[2:4]),
		Identifier: binary.BigEndian.Uint16(hdr[4:6]),
		Sequence:   binary.BigEndian.Uint16(hdr[6:8]),
	}, nil
}
