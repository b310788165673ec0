package singleinstance

// This file defines the API for single-instance ownership and capture delegation.
// A resident process owns a loopback TCP endpoint; later invocations hand their
// capture request to it instead of starting a second overlay.

import (
	"context"
)

// Server owns the TCP endpoint and answers delegated capture requests.
type Server interface {
	// Start binds the first port of the configured range and begins
	// accepting client requests. Fails when the port is taken.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess reports a finished capture. Detail carries the saved
	// file path when file output was enabled, empty otherwise.
	RespondSuccess(detail string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Request is a delegated capture request.
type Request struct {
	// Interactive asks for the selection overlay; false means an immediate
	// full-desktop capture.
	Interactive bool
}

// Client attempts to delegate a capture to a resident server.
type Client interface {
	// TryCapture scans the configured port range, performs the handshake,
	// and delegates the capture to a resident. If no resident is found,
	// returns delegated=false, err=nil.
	TryCapture(ctx context.Context, interactive bool) (delegated bool, detail string, err error)
}

// NewServer returns the TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns the TCP implementation.
func NewClient() Client { return newTcpClient() }
