// Package osbridge implements a local, unprivileged-equivalent OSBridge: the
// host-operation RPC surface the LifecycleEngine calls during configure_fdu's
// network-resolution and config-drive steps.
//
// This is a concrete, single-process adapter, not a privilege-separated host
// agent — every call here runs as the plugin's own user, which is why
// set_interface_unaviable is a no-op rather than an actual
// link-state change (that requires CAP_NET_ADMIN this adapter doesn't
// assume).
//
// store_file's wire contract double-encodes its payload as base64, then hex.
// That is unusual, and preserved here only because the OS-plugin side of the
// protocol this models depends on it; StoreFile decodes both layers before
// writing to disk. Every call site on the engine side that feeds StoreFile
// must apply the matching double-encoding first.
package osbridge
