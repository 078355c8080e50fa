// Package cloudinit renders the vendor-data payload stamped into an FDU's
// config drive and assembles the drive's ISO image, following the cloud-init
// NoCloud datasource conventions.
//
// See https://cloudinit.readthedocs.io/en/latest/reference/datasources/nocloud.html
package cloudinit

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// VendorData is the cloud-config document templated with the node and FDU
// identifiers. configure_fdu renders this, base64-then-hex encodes it, and
// stores it at {base_dir}/vendor_{fdu}.yaml through OSBridge's store_file
// ahead of the config-drive build.
type VendorData struct {
	NodeID   string `yaml:"nodeid"`
	EntityID string `yaml:"entityid"`
}

// GenerateVendorData renders the vendor-data YAML for one FDU, prefixed
// with the "#cloud-config" header the NoCloud datasource expects.
func GenerateVendorData(nodeID, entityID string) (string, error) {
	if nodeID == "" {
		return "", fmt.Errorf("nodeID cannot be empty")
	}
	if entityID == "" {
		return "", fmt.Errorf("entityID cannot be empty")
	}

	vendor := VendorData{
		NodeID:   nodeID,
		EntityID: entityID,
	}

	data, err := yaml.Marshal(&vendor)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vendor-data to YAML: %w", err)
	}

	return "#cloud-config\n" + string(data), nil
}
