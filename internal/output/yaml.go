package output

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

// YAMLFormatter formats resources as YAML.
type YAMLFormatter struct{}

// FormatFDU formats a single FDU as YAML.
func (f *YAMLFormatter) FormatFDU(fdu *v1alpha1.FDU) (string, error) {
	v1alpha1.SetDefaultAPIVersion(fdu)

	data, err := yaml.Marshal(fdu)
	if err != nil {
		return "", fmt.Errorf("failed to marshal FDU to YAML: %w", err)
	}

	return string(data), nil
}

// FormatFDUList formats a list of FDUs as a YAML stream (documents
// separated by ---).
func (f *YAMLFormatter) FormatFDUList(fdus []*v1alpha1.FDU) (string, error) {
	if len(fdus) == 0 {
		return "", nil
	}

	var buf bytes.Buffer

	for i, fdu := range fdus {
		v1alpha1.SetDefaultAPIVersion(fdu)

		data, err := yaml.Marshal(fdu)
		if err != nil {
			return "", fmt.Errorf("failed to marshal FDU %s to YAML: %w", fdu.Name, err)
		}

		if i > 0 {
			buf.WriteString("---\n")
		}

		buf.Write(data)
	}

	return buf.String(), nil
}

// FormatImageList formats the image registry as a YAML stream.
func (f *YAMLFormatter) FormatImageList(images []*v1alpha1.Image) (string, error) {
	if len(images) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	for i, img := range images {
		data, err := yaml.Marshal(img)
		if err != nil {
			return "", fmt.Errorf("failed to marshal image %s to YAML: %w", img.Name, err)
		}
		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}

	return buf.String(), nil
}

// FormatFlavorList formats the flavor registry as a YAML stream.
func (f *YAMLFormatter) FormatFlavorList(flavors []*v1alpha1.Flavor) (string, error) {
	if len(flavors) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	for i, fl := range flavors {
		data, err := yaml.Marshal(fl)
		if err != nil {
			return "", fmt.Errorf("failed to marshal flavor %s to YAML: %w", fl.Name, err)
		}
		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}

	return buf.String(), nil
}
