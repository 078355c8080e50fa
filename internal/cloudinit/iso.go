package cloudinit

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/kdomanski/iso9660"
)

// BuildConfigDrive assembles a CIDATA-labeled ISO9660 image from a set of
// named files (vendor-data, user-data, an SSH public key, ...).
//
// This is an in-process alternative to shelling out to
// templates/create_config_drive.sh: the local OSBridge adapter uses it so a
// config drive can be produced without any host script installed.
//
// The ISO volume label is set to "CIDATA" as required by the cloud-init
// NoCloud datasource; this must be uppercase per the NoCloud specification.
func BuildConfigDrive(files map[string][]byte) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("config drive requires at least one file")
	}

	writer, err := iso9660.NewWriter()
	if err != nil {
		return nil, fmt.Errorf("failed to create ISO writer: %w", err)
	}
	defer func() {
		_ = writer.Cleanup()
	}()

	// Sort names for deterministic ISO output.
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writer.AddFile(bytes.NewReader(files[name]), name); err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", name, err)
		}
	}

	var buf bytes.Buffer
	if err := writer.WriteTo(&buf, "CIDATA"); err != nil {
		return nil, fmt.Errorf("failed to write ISO image: %w", err)
	}

	return buf.Bytes(), nil
}
