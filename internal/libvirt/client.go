package libvirt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/digitalocean/go-libvirt"
	"github.com/digitalocean/go-libvirt/socket/dialers"
)

// DefaultSocketPath is the qemu:///system UNIX socket this plugin targets.
const DefaultSocketPath = "/var/run/libvirt/libvirt-sock"

// Client wraps a go-libvirt connection. It remembers how the connection was
// dialed so Redial can rebuild it after a transport failure: the engine
// reconnects once and retries when DomainDefineXML fails; other failed RPCs
// are surfaced without a reconnect.
type Client struct {
	libvirt *libvirt.Libvirt

	socketPath string
	timeout    time.Duration
}

// SocketPathForURI maps a libvirt connection URI onto the local UNIX socket
// go-libvirt dials. Only local qemu URIs are supported; anything remote
// (qemu+ssh://, qemu+tcp://) is rejected rather than silently dialed wrong.
func SocketPathForURI(uri string) (string, error) {
	switch {
	case uri == "", uri == "qemu:///system":
		return DefaultSocketPath, nil
	case uri == "qemu:///session":
		return "", fmt.Errorf("qemu:///session is not supported: the plugin manages system-scope domains")
	case strings.HasPrefix(uri, "unix://"):
		return strings.TrimPrefix(uri, "unix://"), nil
	default:
		return "", fmt.Errorf("unsupported libvirt URI %q: only qemu:///system and unix:// are dialable", uri)
	}
}

// Connect dials the libvirt daemon at socketPath. An empty socketPath means
// the qemu:///system default; a zero timeout means 5 seconds.
func Connect(socketPath string, timeout time.Duration) (*Client, error) {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	l, err := dial(socketPath, timeout)
	if err != nil {
		return nil, err
	}

	return &Client{libvirt: l, socketPath: socketPath, timeout: timeout}, nil
}

// ConnectURI dials the daemon named by a libvirt connection URI.
func ConnectURI(uri string, timeout time.Duration) (*Client, error) {
	socketPath, err := SocketPathForURI(uri)
	if err != nil {
		return nil, err
	}
	return Connect(socketPath, timeout)
}

// ConnectWithContext dials with cancellation support: the dial itself cannot
// be interrupted mid-handshake, but the caller stops waiting when ctx ends.
func ConnectWithContext(ctx context.Context, socketPath string, timeout time.Duration) (*Client, error) {
	type result struct {
		client *Client
		err    error
	}
	resultCh := make(chan result, 1)

	go func() {
		c, err := Connect(socketPath, timeout)
		resultCh <- result{client: c, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
	case res := <-resultCh:
		return res.client, res.err
	}
}

func dial(socketPath string, timeout time.Duration) (*libvirt.Libvirt, error) {
	dialer := dialers.NewLocal(
		dialers.WithSocket(socketPath),
		dialers.WithLocalTimeout(timeout),
	)

	l := libvirt.NewWithDialer(dialer)
	if err := l.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to libvirt at %s: %w", socketPath, err)
	}
	return l, nil
}

// Redial tears down the current connection and dials a fresh one with the
// same socket and timeout. The old connection's disconnect error is ignored;
// a transport failure usually means it is already dead.
func (c *Client) Redial() error {
	if c.libvirt != nil {
		_ = c.libvirt.Disconnect()
	}

	l, err := dial(c.socketPath, c.timeout)
	if err != nil {
		return err
	}
	c.libvirt = l
	return nil
}

// Close closes the libvirt connection and releases resources.
// It is safe to call Close multiple times.
func (c *Client) Close() error {
	if c.libvirt == nil {
		return nil
	}

	if err := c.libvirt.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect from libvirt: %w", err)
	}
	c.libvirt = nil

	return nil
}

// Libvirt returns the underlying go-libvirt client for direct API access.
// Callers that hold this pointer across a Redial see the stale connection;
// re-fetch after any reconnect.
func (c *Client) Libvirt() *libvirt.Libvirt {
	return c.libvirt
}

// Ping verifies the connection is still alive by calling a simple libvirt API.
func (c *Client) Ping() error {
	if c.libvirt == nil {
		return fmt.Errorf("client not connected")
	}

	if _, err := c.libvirt.ConnectGetLibVersion(); err != nil {
		return fmt.Errorf("libvirt connection is dead: %w", err)
	}

	return nil
}
