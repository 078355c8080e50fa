package storage

import "fmt"

// PoolType represents the type of storage pool backend. Only dir-type pools
// are created by this plugin; the constant exists so the pool CLI can still
// report foreign pools it finds on the connection.
type PoolType string

const (
	PoolTypeDir PoolType = "dir"
)

// VolumeType represents the purpose of a storage volume.
type VolumeType string

const (
	// VolumeTypeDisk is an FDU's working boot disk.
	VolumeTypeDisk VolumeType = "disk"
	// VolumeTypeConfigDrive is an FDU's cloud-init config-drive ISO.
	VolumeTypeConfigDrive VolumeType = "config-drive"
	// VolumeTypeBaseImage is a shared base OS image.
	VolumeTypeBaseImage VolumeType = "base-image"
)

// VolumeFormat represents the disk format.
type VolumeFormat string

const (
	VolumeFormatQCOW2 VolumeFormat = "qcow2"
	VolumeFormatRaw   VolumeFormat = "raw"
)

// VolumeSpec specifies how to create a storage volume. Names follow the
// engine's UUID-keyed layout: {uuid}.{format} for disks, {uuid}_config for
// config drives, and the cached basename for images.
type VolumeSpec struct {
	Name          string
	Type          VolumeType
	Format        VolumeFormat
	CapacityGB    uint64
	BackingVolume string // filesystem path of a qcow2 backing image, if any
}

// Validate checks if the volume spec is valid.
func (v *VolumeSpec) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("volume name is required")
	}
	if v.Type == "" {
		return fmt.Errorf("volume type is required")
	}
	if v.Format == "" {
		return fmt.Errorf("volume format is required")
	}
	if v.Format != VolumeFormatQCOW2 && v.Format != VolumeFormatRaw {
		return fmt.Errorf("invalid volume format: %s (must be qcow2 or raw)", v.Format)
	}
	// Config drives are sized by their content at upload time.
	if v.CapacityGB == 0 && v.Type != VolumeTypeConfigDrive {
		return fmt.Errorf("volume capacity must be greater than 0")
	}
	if v.BackingVolume != "" && v.Format != VolumeFormatQCOW2 {
		return fmt.Errorf("backing volumes are only supported for qcow2 format")
	}
	return nil
}

// PoolInfo contains information about a storage pool.
type PoolInfo struct {
	Name       string
	Type       PoolType
	Path       string // backing directory, for dir-type pools
	UUID       string
	State      string // running, inactive, building, degraded, inaccessible
	Capacity   uint64 // bytes
	Allocation uint64 // bytes
	Available  uint64 // bytes
}

// CapacityGB returns the pool capacity in GB.
func (p *PoolInfo) CapacityGB() float64 {
	return float64(p.Capacity) / (1024 * 1024 * 1024)
}

// AllocationGB returns the pool allocation in GB.
func (p *PoolInfo) AllocationGB() float64 {
	return float64(p.Allocation) / (1024 * 1024 * 1024)
}

// AvailableGB returns the pool available space in GB.
func (p *PoolInfo) AvailableGB() float64 {
	return float64(p.Available) / (1024 * 1024 * 1024)
}

// VolumeInfo contains information about a storage volume.
type VolumeInfo struct {
	Name       string
	Type       VolumeType
	Format     VolumeFormat
	Path       string
	Pool       string
	Capacity   uint64 // bytes
	Allocation uint64 // bytes
}

// CapacityGB returns the volume capacity in GB.
func (v *VolumeInfo) CapacityGB() float64 {
	return float64(v.Capacity) / (1024 * 1024 * 1024)
}

// AllocationGB returns the volume allocation in GB.
func (v *VolumeInfo) AllocationGB() float64 {
	return float64(v.Allocation) / (1024 * 1024 * 1024)
}

// Default pool configuration.
const (
	// DefaultImagesPool is the pool name for base OS images.
	DefaultImagesPool = "fdu-images"
	// DefaultDisksPool is the pool name for FDU working disks.
	DefaultDisksPool = "fdu-disks"
	// DefaultImagesPath is the default path for base images.
	DefaultImagesPath = "/var/lib/libvirt/images/fdurt/images"
	// DefaultDisksPath is the default path for FDU working disks.
	DefaultDisksPath = "/var/lib/libvirt/images/fdurt/disks"
)
