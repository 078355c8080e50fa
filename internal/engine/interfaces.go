package engine

import (
	"github.com/digitalocean/go-libvirt"

	"github.com/jbweber/fdurt/api/v1alpha1"
	"github.com/jbweber/fdurt/internal/osbridge"
)

// HypervisorClient is the libvirt surface the engine needs. Defined
// consumer-side, as internal/storage and internal/metadata do, so the engine
// only depends on the operations it actually calls.
type HypervisorClient interface {
	DomainLookupByUUID(UUID libvirt.UUID) (libvirt.Domain, error)
	DomainDefineXML(XML string) (libvirt.Domain, error)
	DomainCreate(Dom libvirt.Domain) error
	DomainGetState(Dom libvirt.Domain, Flags uint32) (State int32, Reason int32, err error)
	DomainShutdown(Dom libvirt.Domain) error
	DomainSuspend(Dom libvirt.Domain) error
	DomainResume(Dom libvirt.Domain) error
	DomainDestroy(Dom libvirt.Domain) error
	DomainUndefineFlags(Dom libvirt.Domain, Flags libvirt.DomainUndefineFlagsValues) error

	// The metadata pair lets configure_fdu stash the FDU record on the domain
	// itself (internal/metadata), as a recovery cache beside the fabric.
	DomainSetMetadata(Dom libvirt.Domain, Type int32, Metadata libvirt.OptString, Key libvirt.OptString, Uri libvirt.OptString, Flags libvirt.DomainModificationImpact) error
	DomainGetMetadata(Dom libvirt.Domain, Type int32, Uri libvirt.OptString, Flags libvirt.DomainModificationImpact) (string, error)
}

// diskManager is the subset of internal/disk's Manager the engine drives
// during configure_fdu/clean_fdu.
type diskManager interface {
	DiskPath(uuid, format string) string
	ConfigDrivePath(uuid string) string
	ImagePath(filename string) string
	LogPath(uuid string) string
	CreateDisk(diskPath, format string, sizeGB int) error
	CopyImage(srcPath, diskPath string) error
	CheckDiskSpace(sizeGB int) error
	RemoveFiles(paths ...string) error
	DiskExists(path string) (bool, error)
}

// fabricClient is the subset of internal/fabric's client the engine needs to
// publish actual state and look up desired-state resources it can't resolve
// locally (networks).
type fabricClient interface {
	PublishFDU(fdu *v1alpha1.FDU) error
	RemoveFDU(uuid string) error
	FindNodeNetwork(networkUUID string) (brName string, err error)

	AddImage(img *v1alpha1.Image) error
	RemoveImage(uuid string) error
	AddFlavor(f *v1alpha1.Flavor) error
	RemoveFlavor(uuid string) error
}

// osBridge is the subset of internal/osbridge's RPC surface the engine calls
// during configure_fdu's network resolution and config-drive assembly steps.
type osBridge interface {
	// GetNetworkInformations lists host interfaces in kernel order, so the
	// engine's first-match wifi resolution is deterministic.
	GetNetworkInformations(networkUUID string) ([]osbridge.InterfaceInfo, error)
	GetIntfType(intfName string) (string, error)
	SetInterfaceUnavailable(intfName string) error

	// StoreFile writes base64-then-hex encoded data to path on the host side
	// of the OS plugin boundary. The OS plugin decodes on write.
	StoreFile(path string, encoded []byte) error

	// ExecuteCommand runs a shell command line, returning combined output.
	ExecuteCommand(command string) (output string, err error)
}
