// Package fabric is the LifecycleEngine's connection to the desired/actual
// state store: an etcd keyspace shared with the rest of the fog deployment
// fabric.
//
// Desired-state FDU records live under
// desired/node/{nodeid}/runtime/{plugin_uuid}/fdu/{fdu_uuid}, watched as a
// prefix; each record carries the action the engine should take next
// ("define", "configure", "run", ...) plus, for "define", the raw manifest
// fields. Actual-state writes — the engine reporting back what it did — go
// to the mirror actual/ prefix. Registries (images, flavors) and the plugin's
// own heartbeat record share the same node/plugin-scoped key scheme.
//
// Records are JSON on the wire, not YAML: this is the fabric's transport
// encoding, not a file a human edits.
package fabric
