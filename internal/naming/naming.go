// Package naming provides infrastructure-level naming conventions for the
// files and devices an FDU owns: working disk and config-drive basenames,
// transient cloud-init file names, guest interface names, and deterministic
// MAC addresses derived from the FDU's UUID.
//
// These rules are shared between the lifecycle engine, the disk manager, and
// the domain XML renderer so every component computes identical names from
// the same {uuid, format, index} inputs.
package naming

import (
	"fmt"

	"github.com/google/uuid"
)

// DiskFileName returns the working disk basename: {uuid}.{format}.
func DiskFileName(fduUUID, format string) string {
	return fmt.Sprintf("%s.%s", fduUUID, format)
}

// ConfigDriveFileName returns the config-drive basename: {uuid}_config.iso.
func ConfigDriveFileName(fduUUID string) string {
	return fmt.Sprintf("%s_config.iso", fduUUID)
}

// VendorDataFileName returns the transient vendor-data file name written
// during configure: vendor_{uuid}.yaml.
func VendorDataFileName(fduUUID string) string {
	return fmt.Sprintf("vendor_%s.yaml", fduUUID)
}

// UserDataFileName returns the transient user-data file name: userdata_{uuid}.
func UserDataFileName(fduUUID string) string {
	return fmt.Sprintf("userdata_%s", fduUUID)
}

// SSHKeyFileName returns the transient public-key file name: key_{uuid}.pub.
func SSHKeyFileName(fduUUID string) string {
	return fmt.Sprintf("key_%s.pub", fduUUID)
}

// DefaultIntfName returns the guest interface name used when a network
// attachment doesn't name one: veth{index}.
func DefaultIntfName(index int) string {
	return fmt.Sprintf("veth%d", index)
}

// MACFromUUID calculates a deterministic MAC address for one of an FDU's
// interfaces. Uses the locally-administered be:ef: prefix followed by the
// first three bytes of the FDU UUID and the attachment index, so every
// attachment of every FDU gets a stable, distinct address across reboots.
//
// Example: UUID 11111111-... index 2 → be:ef:11:11:11:02
func MACFromUUID(fduUUID string, index int) (string, error) {
	parsed, err := uuid.Parse(fduUUID)
	if err != nil {
		return "", fmt.Errorf("invalid FDU uuid %q: %w", fduUUID, err)
	}
	if index < 0 || index > 0xff {
		return "", fmt.Errorf("attachment index %d out of range", index)
	}

	return fmt.Sprintf("be:ef:%02x:%02x:%02x:%02x",
		parsed[0], parsed[1], parsed[2], index), nil
}
