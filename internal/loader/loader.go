// Package loader provides functions for loading FDU manifests from YAML
// files, the on-disk form of the fabric's desired-state record.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/fdurt/api/v1alpha1"
	"github.com/jbweber/fdurt/internal/config"
)

// LoadFromFile loads an FDU manifest from a YAML file.
// The file must be in the fdurt.fog.io/v1alpha1 format.
func LoadFromFile(path string) (*v1alpha1.FDU, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return LoadFromYAML(data)
}

// LoadFromYAML loads an FDU manifest from YAML bytes.
func LoadFromYAML(data []byte) (*v1alpha1.FDU, error) {
	var fdu v1alpha1.FDU
	if err := yaml.Unmarshal(data, &fdu); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if fdu.APIVersion == "" {
		return nil, fmt.Errorf("missing required field: apiVersion")
	}
	if fdu.Kind == "" {
		return nil, fmt.Errorf("missing required field: kind")
	}

	expectedAPIVersion := v1alpha1.GroupName + "/" + v1alpha1.Version
	if fdu.APIVersion != expectedAPIVersion {
		return nil, fmt.Errorf("unsupported apiVersion: %s (expected: %s)", fdu.APIVersion, expectedAPIVersion)
	}
	if fdu.Kind != v1alpha1.FDUKind {
		return nil, fmt.Errorf("unsupported kind: %s (expected: %s)", fdu.Kind, v1alpha1.FDUKind)
	}

	applyDefaults(&fdu)

	if err := validateSpec(&fdu); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &fdu, nil
}

// SaveToFile saves an FDU manifest to a YAML file.
func SaveToFile(fdu *v1alpha1.FDU, path string) error {
	v1alpha1.SetDefaultAPIVersion(fdu)

	data, err := yaml.Marshal(fdu)
	if err != nil {
		return fmt.Errorf("failed to marshal FDU to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}

// applyDefaults sets default values for optional fields and normalizes
// user-supplied strings.
func applyDefaults(fdu *v1alpha1.FDU) {
	if fdu.Status.State == "" {
		fdu.Status.State = v1alpha1.FDUStateDefined
	}
	if fdu.Status.StatusLabel == "" {
		fdu.Status.StatusLabel = v1alpha1.StatusLabelDefined
	}

	fdu.Normalize()
}

// validateSpec validates the FDU spec for required fields and consistency.
func validateSpec(fdu *v1alpha1.FDU) error {
	if fdu.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}
	if fdu.Spec.UUID == "" {
		return fmt.Errorf("spec.uuid is required")
	}
	if fdu.Spec.BaseImage == "" {
		return fmt.Errorf("spec.baseImage is required")
	}

	intfNamesSeen := make(map[string]bool)
	for i, n := range fdu.Spec.Networks {
		if n.Type == "" {
			return fmt.Errorf("spec.networks[%d].type is required", i)
		}
		if n.Type != "wifi" && n.NetworkUUID == "" {
			return fmt.Errorf("spec.networks[%d].networkUUID is required for non-wifi attachments", i)
		}
		if intfNamesSeen[n.IntfName] {
			return fmt.Errorf("spec.networks[%d].intfName %q is duplicated", i, n.IntfName)
		}
		intfNamesSeen[n.IntfName] = true
	}

	if fdu.Spec.SSHKey != "" {
		if err := config.ValidateSSHKey(fdu.Spec.SSHKey); err != nil {
			return fmt.Errorf("spec.sshKey: %w", err)
		}
	}

	return nil
}
