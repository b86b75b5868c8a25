// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode ErrorCode
	}{
		{
			name:         "nil error",
			err:          nil,
			expectedCode: "",
		},
		{
			name:         "PermissionDeniedError",
			err:          &PermissionDeniedError{Err: syscall.EPERM},
			expectedCode: ErrCodeDenied,
		},
		{
			name:         "wrapped PermissionDeniedError",
			err:          fmt.Errorf("open socket: %w", &PermissionDeniedError{Err: syscall.EACCES}),
			expectedCode: ErrCodeDenied,
		},
		{
			name:         "ResolutionError",
			err:          &ResolutionError{Host: "bad.host", Err: fmt.Errorf("no such host")},
			expectedCode: ErrCodeDNS,
		},
		{
			name:         "wrapped ResolutionError",
			err:          fmt.Errorf("session failed: %w", &ResolutionError{Host: "bad.host", Err: fmt.Errorf("no such host")}),
			expectedCode: ErrCodeDNS,
		},
		{
			name:         "already classified",
			err:          fmt.Errorf("run: %w", &PingError{Code: ErrCodeInvalidRequest, Message: "negative delay"}),
			expectedCode: ErrCodeInvalidRequest,
		},
		{
			name:         "malformed packet",
			err:          fmt.Errorf("decode: %w", ErrMalformedPacket),
			expectedCode: ErrCodeMalformed,
		},
		{
			name:         "context deadline exceeded",
			err:          context.DeadlineExceeded,
			expectedCode: ErrCodeTimeout,
		},
		{
			name:         "context canceled",
			err:          context.Canceled,
			expectedCode: ErrCodeTimeout,
		},
		{
			name:         "net.DNSError",
			err:          &net.DNSError{Err: "no such host", Name: "bad.host"},
			expectedCode: ErrCodeDNS,
		},
		{
			name:         "net.DNSError timeout",
			err:          &net.DNSError{Err: "i/o timeout", Name: "slow.host", IsTimeout: true},
			expectedCode: ErrCodeTimeout,
		},
		{
			name:         "raw EPERM",
			err:          syscall.EPERM,
			expectedCode: ErrCodeDenied,
		},
		{
			name:         "wrapped EHOSTUNREACH",
			err:          fmt.Errorf("sendto failed: %w", syscall.EHOSTUNREACH),
			expectedCode: ErrCodeHostUnreach,
		},
		{
			name:         "ENETUNREACH",
			err:          syscall.ENETUNREACH,
			expectedCode: ErrCodeNetUnreach,
		},
		{
			name:         "ETIMEDOUT",
			err:          syscall.ETIMEDOUT,
			expectedCode: ErrCodeTimeout,
		},
		{
			name:         "unknown error",
			err:          errors.New("something went wrong"),
			expectedCode: ErrCodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyError(tt.err)
			if tt.err == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.expectedCode, result.Code)
			assert.NotEmpty(t, result.Message)
		})
	}
}

func TestPermissionDeniedError(t *testing.T) {
	permErr := &PermissionDeniedError{Err: syscall.EPERM}

	assert.Contains(t, permErr.Error(), "escalate to root or administrative level")
	assert.ErrorIs(t, permErr, syscall.EPERM)
	assert.True(t, IsPermissionError(fmt.Errorf("socket: %w", syscall.EACCES)))
	assert.False(t, IsPermissionError(syscall.ENETUNREACH))
}

func TestResolutionError(t *testing.T) {
	inner := fmt.Errorf("no such host")
	resolveErr := &ResolutionError{Host: "bad.example.com", Err: inner}

	assert.Contains(t, resolveErr.Error(), "bad.example.com")
	assert.Contains(t, resolveErr.Error(), "no such host")
	assert.ErrorIs(t, resolveErr, inner)
}

func TestIsUnreachableError(t *testing.T) {
	assert.True(t, IsUnreachableError(fmt.Errorf("send: %w", syscall.EHOSTUNREACH)))
	assert.True(t, IsUnreachableError(syscall.ENETUNREACH))
	assert.False(t, IsUnreachableError(syscall.EPERM))
	assert.False(t, IsUnreachableError(nil))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 3, ExitCode(&PermissionDeniedError{Err: syscall.EPERM}))
	assert.Equal(t, 2, ExitCode(&ResolutionError{Host: "x", Err: errors.New("nope")}))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
}
