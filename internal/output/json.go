package output

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

// JSONFormatter formats resources as JSON.
type JSONFormatter struct{}

// FormatFDU formats a single FDU as JSON.
func (f *JSONFormatter) FormatFDU(fdu *v1alpha1.FDU) (string, error) {
	v1alpha1.SetDefaultAPIVersion(fdu)

	data, err := json.MarshalIndent(fdu, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal FDU to JSON: %w", err)
	}

	return string(data) + "\n", nil
}

// FormatFDUList formats a list of FDUs as a JSON array.
func (f *JSONFormatter) FormatFDUList(fdus []*v1alpha1.FDU) (string, error) {
	if len(fdus) == 0 {
		return "[]\n", nil
	}

	for _, fdu := range fdus {
		v1alpha1.SetDefaultAPIVersion(fdu)
	}

	data, err := json.MarshalIndent(fdus, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal FDUs to JSON: %w", err)
	}

	return string(data) + "\n", nil
}

// FormatImageList formats the image registry as a JSON array.
func (f *JSONFormatter) FormatImageList(images []*v1alpha1.Image) (string, error) {
	if len(images) == 0 {
		return "[]\n", nil
	}

	data, err := json.MarshalIndent(images, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal images to JSON: %w", err)
	}

	return string(data) + "\n", nil
}

// FormatFlavorList formats the flavor registry as a JSON array.
func (f *JSONFormatter) FormatFlavorList(flavors []*v1alpha1.Flavor) (string, error) {
	if len(flavors) == 0 {
		return "[]\n", nil
	}

	data, err := json.MarshalIndent(flavors, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal flavors to JSON: %w", err)
	}

	return string(data) + "\n", nil
}
