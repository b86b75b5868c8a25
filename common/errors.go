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
)

// ErrorCode represents a classifiable ping failure.
type ErrorCode string

const (
	// ErrCodeDenied indicates the OS refused to open a raw socket.
	ErrCodeDenied ErrorCode = "DENIED"
	// ErrCodeDNS indicates the host could not be resolved.
	ErrCodeDNS ErrorCode = "DNS"
	// ErrCodeMalformed indicates a reply too short to hold an ICMP header.
	ErrCodeMalformed ErrorCode = "MALFORMED"
	// ErrCodeTimeout indicates the operation timed out or was canceled.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeHostUnreach indicates the target host is unreachable.
	ErrCodeHostUnreach ErrorCode = "HOSTUNREACH"
	// ErrCodeNetUnreach indicates the target network is unreachable.
	ErrCodeNetUnreach ErrorCode = "NETUNREACH"
	// ErrCodeInvalidRequest indicates bad parameters from the caller.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeUnknown is the catch-all for unclassified errors.
	ErrCodeUnknown ErrorCode = "UNKNOWN"
)

// ErrMalformedPacket is returned when a received datagram is too short
// to contain an IPv4 header followed by an ICMP echo header.
var ErrMalformedPacket = errors.New("malformed ICMP echo reply")

// PingError is a classified error from a ping session.
type PingError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *PingError) Error() string {
	return e.Message
}

func (e *PingError) Unwrap() error {
	return e.Err
}

// PermissionDeniedError is returned when the OS rejects raw socket creation.
type PermissionDeniedError struct {
	Err error
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("raw socket not permitted (%s): please escalate to root or administrative level and re-run", e.Err)
}

func (e *PermissionDeniedError) Unwrap() error {
	return e.Err
}

// ResolutionError wraps a failure to map a host to an IPv4 address.
type ResolutionError struct {
	Host string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve host %q: %s", e.Host, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// IsPermissionError reports whether err was caused by EPERM or EACCES.
func IsPermissionError(err error) bool {
	return errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES)
}

// IsUnreachableError reports whether err is a host or network unreachable
// error, which the session counts as a lost probe.
func IsUnreachableError(err error) bool {
	return errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH)
}

// ClassifyError inspects an error chain and returns a PingError with the appropriate code.
func ClassifyError(err error) *PingError {
	if err == nil {
		return nil
	}

	var pingErr *PingError
	if errors.As(err, &pingErr) {
		return pingErr
	}

	var permErr *PermissionDeniedError
	if errors.As(err, &permErr) {
		return &PingError{Code: ErrCodeDenied, Message: err.Error(), Err: err}
	}

	var resolveErr *ResolutionError
	if errors.As(err, &resolveErr) {
		return &PingError{Code: ErrCodeDNS, Message: err.Error(), Err: err}
	}

	if errors.Is(err, ErrMalformedPacket) {
		return &PingError{Code: ErrCodeMalformed, Message: err.Error(), Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &PingError{Code: ErrCodeTimeout, Message: err.Error(), Err: err}
	}

	var netDNSErr *net.DNSError
	if errors.As(err, &netDNSErr) {
		if netDNSErr.IsTimeout {
			return &PingError{Code: ErrCodeTimeout, Message: err.Error(), Err: err}
		}
		return &PingError{Code: ErrCodeDNS, Message: err.Error(), Err: err}
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return classifySyscallError(errno, err)
	}

	return &PingError{Code: ErrCodeUnknown, Message: err.Error(), Err: err}
}

func classifySyscallError(errno syscall.Errno, original error) *PingError {
	switch errno {
	case syscall.EACCES, syscall.EPERM:
		return &PingError{Code: ErrCodeDenied, Message: original.Error(), Err: original}
	case syscall.EHOSTUNREACH:
		return &PingError{Code: ErrCodeHostUnreach, Message: original.Error(), Err: original}
	case syscall.ENETUNREACH:
		return &PingError{Code: ErrCodeNetUnreach, Message: original.Error(), Err: original}
	case syscall.ETIMEDOUT:
		return &PingError{Code: ErrCodeTimeout, Message: original.Error(), Err: original}
	default:
		return &PingError{Code: ErrCodeUnknown, Message: original.Error(), Err: original}
	}
}

// ExitCode maps a fatal session error to the process exit status.
// Usage errors and interrupted sessions never reach here and exit 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch ClassifyError(err).Code {
	case ErrCodeDenied:
		return 3
	case ErrCodeDNS:
		return 2
	default:
		return 1
	}
}
