package libvirt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketPathForURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    string
		wantErr bool
	}{
		{name: "empty means system", uri: "", want: DefaultSocketPath},
		{name: "system URI", uri: "qemu:///system", want: DefaultSocketPath},
		{name: "explicit unix socket", uri: "unix:///run/user/libvirt.sock", want: "/run/user/libvirt.sock"},
		{name: "session URI rejected", uri: "qemu:///session", wantErr: true},
		{name: "ssh transport rejected", uri: "qemu+ssh://host/system", wantErr: true},
		{name: "tcp transport rejected", uri: "qemu+tcp://host/system", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SocketPathForURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConnect_InvalidSocket(t *testing.T) {
	_, err := Connect("/nonexistent/socket", 100*time.Millisecond)
	assert.Error(t, err)
}

func TestConnectURI_RejectedTransport(t *testing.T) {
	_, err := ConnectURI("qemu+ssh://remote/system", time.Second)
	assert.Error(t, err)
}

func TestConnectWithContext_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ConnectWithContext(ctx, "", 0)
	assert.Error(t, err)
}

func TestPing_Disconnected(t *testing.T) {
	c := &Client{libvirt: nil}
	assert.Error(t, c.Ping())
}

func TestClose_NilConnectionIsNoop(t *testing.T) {
	c := &Client{libvirt: nil}
	assert.NoError(t, c.Close())
}

// The remaining behaviors (ping, redial, idempotent close against a live
// daemon) are integration-level and need a running libvirtd.
func TestConnect_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	c, err := Connect("", 0)
	if err != nil {
		t.Skipf("libvirt not available: %v", err)
	}
	defer func() {
		assert.NoError(t, c.Close())
	}()

	require.NoError(t, c.Ping())
	require.NotNil(t, c.Libvirt())

	require.NoError(t, c.Redial())
	require.NoError(t, c.Ping())
}
