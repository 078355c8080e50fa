// Package libvirt manages the plugin's connection to the local libvirt
// daemon, wrapping github.com/digitalocean/go-libvirt.
//
// The Client type owns connection lifecycle only: dial, ping, redial, close.
// Domain, storage-pool, and metadata operations live with their consumers
// (internal/engine, internal/storage, internal/metadata), each of which
// defines its own consumer-side interface over *libvirt.Libvirt so it can
// be tested against a mock without this package's involvement.
//
// Redial exists for the engine's transport-error handling: when the
// DomainDefineXML RPC fails, the engine reconnects exactly once and retries
// before surfacing the failure; other RPC failures are surfaced without a
// reconnect. Client remembers its dial parameters so the reconnect
// reproduces the original connection.
//
// Only local connections are supported. The configured LibvirtURI is mapped
// to a UNIX socket by SocketPathForURI; remote transports (qemu+ssh://,
// qemu+tcp://) are rejected at startup rather than half-supported.
package libvirt
