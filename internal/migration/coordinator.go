// Package migration defines the interface seam for a future live-migration
// feature. No concrete implementation exists, and the LifecycleEngine's
// action-dispatch table does not route to it: the migration feature itself
// remains out of scope, but the typed extension point is kept visible for a
// future plugin revision.
//
// The intended shape, sketched but never wired in the source this plugin is
// based on: a destination node observes a LANDING intent for an FDU,
// prepares its image, flavor, disk, and domain XML, then signals readiness;
// the source node observes that readiness, invokes the hypervisor's native
// migrate call, then cleans itself up locally.
package migration

import "github.com/jbweber/fdurt/api/v1alpha1"

// Coordinator is the seam a live-migration implementation would fill in.
type Coordinator interface {
	// PrepareLanding provisions everything a migrating FDU needs on the
	// destination node short of starting it: image, flavor, disk, domain XML.
	PrepareLanding(fdu *v1alpha1.FDU) error

	// SignalReady tells the source node the destination has finished
	// PrepareLanding and is ready to receive the live migration.
	SignalReady(fdu *v1alpha1.FDU) error

	// MigrateOut runs the hypervisor-native migration of a RUNNING FDU to
	// destNode, then removes the local copy once it completes.
	MigrateOut(fdu *v1alpha1.FDU, destNode string) error
}
