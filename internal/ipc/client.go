// Package ipc provides the client for Hachimi's local HTTP command endpoint.
package ipc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d2verb/zokuzoku/internal/protocol"
)

const (
	// Port is the fixed port Hachimi listens on.
	Port = 50433
	// DefaultHost is the address used when none is configured.
	DefaultHost = "127.0.0.1"
	// RequestTimeout bounds a full request/response round trip.
	RequestTimeout = 30 * time.Second
)

// Client sends commands to Hachimi.
// A Client is safe for concurrent use; its target never changes after construction.
type Client struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client targeting host on the Hachimi port.
func New(host string, opts ...Option) *Client {
	return newClient(host, Port, RequestTimeout, opts...)
}

func newClient(host string, port int, timeout time.Duration, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}
	c := &Client{
		url:    "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/",
		client: &http.Client{Timeout: timeout},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string {
	return c.url
}

// Call sends cmd to Hachimi and returns its reply.
//
// An Error response from Hachimi is returned as a *RemoteError, never as a value.
// Other failures are *TransportError, *HTTPError or *DecodeError. A timed out call
// may still have been carried out by Hachimi.
func (c *Client) Call(ctx context.Context, cmd protocol.Command) (protocol.Reply, error) {
	body, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return nil, err
	}

	log := c.logger.With("request_id", uuid.NewString(), "command", cmd.Type())
	start := time.Now()

	reply, err := c.roundTrip(ctx, body)
	if err != nil {
		log.Debug("hachimi call failed", "duration", time.Since(start), "error", err)
		return nil, err
	}
	log.Debug("hachimi call succeeded", "duration", time.Since(start), "reply", reply.Type())
	return reply, nil
}

func (c *Client) roundTrip(ctx context.Context, body []byte) (protocol.Reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	decoded, err := protocol.DecodeResponse(data)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	switch r := decoded.(type) {
	case protocol.ErrorResponse:
		msg := UnknownErrorMessage
		if r.Message != nil {
			msg = *r.Message
		}
		return nil, &RemoteError{Message: msg}
	case protocol.Reply:
		return r, nil
	default:
		return nil, &DecodeError{Err: fmt.Errorf("unexpected response %s", decoded.Type())}
	}
}

// Phase identifies a step of a call reported to a ProgressFunc.
type Phase string

const (
	PhaseSending Phase = "sending"
	PhaseDone    Phase = "done"
)

// ProgressFunc receives caller-visible progress of a call.
type ProgressFunc func(cmd protocol.Command, phase Phase, err error)

// CallWithProgress behaves exactly like Call and reports the start and end of
// the round trip to onProgress. Nothing extra is sent on the wire.
func (c *Client) CallWithProgress(ctx context.Context, cmd protocol.Command, onProgress ProgressFunc) (protocol.Reply, error) {
	if onProgress == nil {
		return c.Call(ctx, cmd)
	}
	if err := protocol.CheckCommand(cmd); err != nil {
		return nil, err
	}
	onProgress(cmd, PhaseSending, nil)
	reply, err := c.Call(ctx, cmd)
	onProgress(cmd, PhaseDone, err)
	return reply, err
}
