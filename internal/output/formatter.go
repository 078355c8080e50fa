// Package output provides formatters for displaying fdurt resources
// (FDUs, images, flavors) in various formats (table, YAML, JSON).
package output

import (
	"fmt"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatYAML is a YAML format for declarative configs.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
)

// Formatter formats fdurt resources for diagnostic CLI output.
type Formatter interface {
	// FormatFDU formats a single FDU resource.
	FormatFDU(fdu *v1alpha1.FDU) (string, error)

	// FormatFDUList formats a list of FDU resources.
	FormatFDUList(fdus []*v1alpha1.FDU) (string, error)

	// FormatImageList formats the image registry.
	FormatImageList(images []*v1alpha1.Image) (string, error)

	// FormatFlavorList formats the flavor registry.
	FormatFlavorList(flavors []*v1alpha1.Flavor) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
}

// NewFormatter creates a new Formatter based on the specified format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	f := Format(format)
	switch f {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}
