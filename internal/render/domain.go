// Package render expands the libvirt domain XML template for an FDU from
// its resolved configuration: {name, uuid, memory, cpu, disk_image,
// iso_image, networks, format}. Disk and cdrom devices are sourced by
// filesystem path rather than libvirt storage volume, since configure_fdu
// works directly against files under PluginConfig.BaseDir.
package render

import (
	"fmt"

	"libvirt.org/go/libvirtxml"

	"github.com/jbweber/fdurt/api/v1alpha1"
	"github.com/jbweber/fdurt/internal/naming"
)

// DomainParams is the resolved variable set configure_fdu renders the
// domain XML template with.
type DomainParams struct {
	Name      string
	UUID      string
	MemoryMB  int
	CPU       int
	DiskImage string
	ISOImage  string
	Format    string
	Networks  []v1alpha1.NetworkAttachment
}

// RenderDomainXML builds the libvirt domain XML for one FDU.
func RenderDomainXML(p DomainParams) (string, error) {
	if p.Name == "" {
		return "", fmt.Errorf("domain name is required")
	}
	if p.DiskImage == "" {
		return "", fmt.Errorf("disk image path is required")
	}

	format := p.Format
	if format == "" {
		format = "qcow2"
	}

	domain := &libvirtxml.Domain{
		Type: "kvm",
		Name: p.Name,
		UUID: p.UUID,
		Memory: &libvirtxml.DomainMemory{
			Value: uint(p.MemoryMB),
			Unit:  "MiB",
		},
		VCPU: &libvirtxml.DomainVCPU{
			Placement: "static",
			Value:     uint(p.CPU),
		},
		OS: &libvirtxml.DomainOS{
			Type: &libvirtxml.DomainOSType{
				Arch: "x86_64",
				Type: "hvm",
			},
		},
		Features: &libvirtxml.DomainFeatureList{
			ACPI: &libvirtxml.DomainFeature{},
			APIC: &libvirtxml.DomainFeatureAPIC{},
			PAE:  &libvirtxml.DomainFeature{},
		},
		CPU: &libvirtxml.DomainCPU{
			Mode: "host-model",
			Model: &libvirtxml.DomainCPUModel{
				Fallback: "allow",
			},
		},
		Clock: &libvirtxml.DomainClock{
			Offset: "utc",
			Timer: []libvirtxml.DomainTimer{
				{Name: "rtc", TickPolicy: "catchup"},
				{Name: "pit", TickPolicy: "delay"},
				{Name: "hpet", Present: "no"},
			},
		},
		OnPoweroff: "destroy",
		OnReboot:   "restart",
		OnCrash:    "restart",
		Devices: &libvirtxml.DomainDeviceList{
			Controllers: []libvirtxml.DomainController{
				{
					Type:  "pci",
					Index: uintPtr(0),
					Model: "pci-root",
				},
			},
			MemBalloon: &libvirtxml.DomainMemBalloon{
				Model: "virtio",
			},
			RNGs: []libvirtxml.DomainRNG{
				{
					Model: "virtio",
					Backend: &libvirtxml.DomainRNGBackend{
						Random: &libvirtxml.DomainRNGBackendRandom{
							Device: "/dev/urandom",
						},
					},
				},
			},
		},
	}

	bootDisk := libvirtxml.DomainDisk{
		Device: "disk",
		Driver: &libvirtxml.DomainDiskDriver{
			Name:  "qemu",
			Type:  format,
			Cache: "none",
		},
		Source: &libvirtxml.DomainDiskSource{
			File: &libvirtxml.DomainDiskSourceFile{
				File: p.DiskImage,
			},
		},
		Target: &libvirtxml.DomainDiskTarget{
			Dev: "vda",
			Bus: "virtio",
		},
		Boot: &libvirtxml.DomainDeviceBoot{
			Order: 1,
		},
	}
	domain.Devices.Disks = append(domain.Devices.Disks, bootDisk)

	if p.ISOImage != "" {
		cdrom := libvirtxml.DomainDisk{
			Device: "cdrom",
			Driver: &libvirtxml.DomainDiskDriver{
				Name: "qemu",
				Type: "raw",
			},
			Source: &libvirtxml.DomainDiskSource{
				File: &libvirtxml.DomainDiskSourceFile{
					File: p.ISOImage,
				},
			},
			Target: &libvirtxml.DomainDiskTarget{
				Dev: "sda",
				Bus: "sata",
			},
			ReadOnly: &libvirtxml.DomainDiskReadOnly{},
		}
		domain.Devices.Disks = append(domain.Devices.Disks, cdrom)
	}

	for i, net := range p.Networks {
		iface, err := renderInterface(net, i, p.UUID)
		if err != nil {
			return "", err
		}
		domain.Devices.Interfaces = append(domain.Devices.Interfaces, iface)
	}

	domain.Devices.Serials = []libvirtxml.DomainSerial{
		{
			Source: &libvirtxml.DomainChardevSource{Pty: &libvirtxml.DomainChardevSourcePty{}},
			Target: &libvirtxml.DomainSerialTarget{Port: uintPtr(0)},
		},
	}
	domain.Devices.Consoles = []libvirtxml.DomainConsole{
		{
			Source: &libvirtxml.DomainChardevSource{Pty: &libvirtxml.DomainChardevSourcePty{}},
			Target: &libvirtxml.DomainConsoleTarget{Type: "serial", Port: uintPtr(0)},
		},
	}

	xml, err := domain.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to marshal domain XML: %w", err)
	}

	return xml, nil
}

// renderInterface builds the interface device for one resolved network
// attachment. A "wifi" attachment is rendered as a direct (macvtap) device
// against its DirectIntf; anything else is a bridge device against BrName.
// Each interface gets a deterministic MAC derived from the FDU UUID so the
// guest sees stable addressing across clean/configure cycles.
func renderInterface(n v1alpha1.NetworkAttachment, index int, fduUUID string) (libvirtxml.DomainInterface, error) {
	intfName := n.IntfName
	if intfName == "" {
		intfName = naming.DefaultIntfName(index)
	}

	iface := libvirtxml.DomainInterface{
		Model:  &libvirtxml.DomainInterfaceModel{Type: "virtio"},
		Target: &libvirtxml.DomainInterfaceTarget{Dev: intfName},
	}

	if fduUUID != "" {
		mac, err := naming.MACFromUUID(fduUUID, index)
		if err != nil {
			return iface, fmt.Errorf("network attachment %d: %w", index, err)
		}
		iface.MAC = &libvirtxml.DomainInterfaceMAC{Address: mac}
	}

	if n.Type == "wifi" {
		if n.DirectIntf == "" {
			return iface, fmt.Errorf("network attachment %d: direct_intf not resolved for wifi type", index)
		}
		iface.Source = &libvirtxml.DomainInterfaceSource{
			Direct: &libvirtxml.DomainInterfaceSourceDirect{
				Dev:  n.DirectIntf,
				Mode: "bridge",
			},
		}
		return iface, nil
	}

	if n.BrName == "" {
		return iface, fmt.Errorf("network attachment %d: br_name not resolved", index)
	}
	iface.Source = &libvirtxml.DomainInterfaceSource{
		Bridge: &libvirtxml.DomainInterfaceSourceBridge{Bridge: n.BrName},
	}

	return iface, nil
}

func uintPtr(v uint) *uint { return &v }
