// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package icmpecho

import (
	"bytes"
	"encoding/binary"
	"errors"
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// mockEchoReply serializes an IPv4 datagram carrying an ICMP Echo Reply
func mockEchoReply(t *testing.T, identifier uint16, sequence uint16) []byte {
	ipLayer := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Id:       4321,
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    net.ParseIP("1.2.3.4"),
		DstIP:    net.ParseIP("5.6.7.8"),
	}
	icmpLayer := &layers.ICMPv4{
		TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoReply, 0),
		Id:       identifier,
		Seq:      sequence,
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	err := gopacket.SerializeLayers(buf, opts,
		ipLayer,
		icmpLayer,
		gopacket.Payload(bytes.Repeat([]byte{payloadFiller}, PayloadLen)),
	)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestEncodeLayout(t *testing.T) {
	pkt := Encode(0x1234, 0xabcd)

	require.Len(t, pkt, PacketLen)
	assert.Equal(t, uint8(layers.ICMPv4TypeEchoRequest), pkt[0])
	assert.Equal(t, uint8(0), pkt[1])
	assert.Equal(t, uint16(0x1234), binary.BigEndian.Uint16(pkt[4:6]))
	assert.Equal(t, uint16(0xabcd), binary.BigEndian.Uint16(pkt[6:8]))
	assert.Equal(t, bytes.Repeat([]byte{'Q'}, PayloadLen), pkt[HeaderLen:])
}

func TestEncodeChecksumSelfVerifies(t *testing.T) {
	for _, id := range []uint16{0, 1, 2, 255, 256, 0x7fff, 0x8000, 0xfffe, 0xffff} {
		pkt := Encode(id, 1)
		assert.Equal(t, uint16(0), Checksum(pkt), "identifier %d", id)

		// re-zeroing the field and recomputing yields the stored checksum
		stored := binary.BigEndian.Uint16(pkt[2:4])
		pkt[2], pkt[3] = 0, 0
		assert.Equal(t, stored, Checksum(pkt), "identifier %d", id)
	}
}

func TestEncodeMatchesGopacket(t *testing.T) {
	icmpLayer := &layers.ICMPv4{
		TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
		Id:       41821,
		Seq:      7,
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true}
	err := gopacket.SerializeLayers(buf, opts,
		icmpLayer,
		gopacket.Payload(bytes.Repeat([]byte{payloadFiller}, PayloadLen)),
	)
	require.NoError(t, err)

	assert.Equal(t, buf.Bytes(), Encode(41821, 7))
}

func TestEncodeMatchesXNetICMP(t *testing.T) {
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   12345,
			Seq:  1,
			Data: bytes.Repeat([]byte{payloadFiller}, PayloadLen),
		},
	}
	want, err := msg.Marshal(nil)
	require.NoError(t, err)

	got := Encode(12345, 1)
	assert.Equal(t, want, got)

	parsed, err := icmp.ParseMessage(1, got)
	require.NoError(t, err)
	assert.Equal(t, ipv4.ICMPTypeEcho, parsed.Type)
	echo, ok := parsed.Body.(*icmp.Echo)
	require.True(t, ok)
	assert.Equal(t, 12345, echo.ID)
	assert.Equal(t, 1, echo.Seq)
}

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{
			name: "empty",
			data: nil,
			want: 0xffff,
		},
		{
			name: "RFC 1071 example",
			data: []byte{0x00, 0x01, 0xf2, 0x03, 0xf4, 0xf5, 0xf6, 0xf7},
			want: ^uint16(0xddf2),
		},
		{
			name: "all ones folds to zero",
			data: []byte{0xff, 0xff, 0xff, 0xff},
			want: 0,
		},
		{
			name: "odd length pads the last byte",
			data: []byte{0x01, 0x02, 0x03},
			want: ^uint16(0x0102 + 0x0300),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Checksum(tt.data))
		})
	}
}

func TestChecksumOddLengthInRange(t *testing.T) {
	for n := 1; n < 64; n += 2 {
		data := bytes.Repeat([]byte{0xff}, n)
		require.NotPanics(t, func() {
			sum := Checksum(data)
			assert.LessOrEqual(t, int(sum), 0xffff)
		})
	}
}

func TestChecksumLargeBufferWraps(t *testing.T) {
	// 2^17 words of 0xffff overflow the 32-bit accumulator, which wraps to
	// 0xfffe0000 instead of carrying into a 33rd bit
	data := bytes.Repeat([]byte{0xff}, 1<<18)
	assert.Equal(t, uint16(0x0100), Checksum(data))

	// 2^16 words still fit and fold cleanly
	data = bytes.Repeat([]byte{0xff}, 1<<17)
	assert.Equal(t, uint16(0), Checksum(data))
}

func TestDecodeReply(t *testing.T) {
	datagram := mockEchoReply(t, 4242, 9)

	reply, err := DecodeReply(datagram)
	require.NoError(t, err)
	assert.Equal(t, uint8(layers.ICMPv4TypeEchoReply), reply.Type)
	assert.Equal(t, uint8(0), reply.Code)
	assert.Equal(t, uint16(4242), reply.Identifier)
	assert.Equal(t, uint16(9), reply.Sequence)
	assert.Equal(t, binary.BigEndian.Uint16(datagram[22:24]), reply.Checksum)
	assert.Equal(t, layers.ICMPv4TypeCode(0), reply.TypeCode())
	assert.True(t, reply.Matches(4242))
	assert.False(t, reply.Matches(4243))
}

func TestDecodeReplyRecoversEveryIdentifier(t *testing.T) {
	datagram := make([]byte, ipv4HeaderLen, ipv4HeaderLen+PacketLen)
	for id := 0; id <= 0xffff; id++ {
		pkt := append(datagram[:ipv4HeaderLen], Encode(uint16(id), 1)...)
		reply, err := DecodeReply(pkt)
		if err != nil {
			t.Fatalf("identifier %d: %v", id, err)
		}
		if reply.Identifier != uint16(id) {
			t.Fatalf("identifier %d decoded as %d", id, reply.Identifier)
		}
	}
}

func TestDecodeReplyMalformed(t *testing.T) {
	for _, n := range []int{0, 1, 20, 27} {
		_, err := DecodeReply(make([]byte, n))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedPacket), "len %d", n)
	}

	_, err := DecodeReply(make([]byte, MinReplyLen))
	assert.NoError(t, err)
}

func TestEchoRequestMarshal(t *testing.T) {
	req := EchoRequest{Identifier: 3, Sequence: 4}
	assert.Equal(t, Encode(3, 4), req.Marshal())
}
