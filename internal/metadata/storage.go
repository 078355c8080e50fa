// Package metadata stores FDU records inside libvirt's custom XML metadata
// element, so the record persists with the domain itself as a recovery cache
// alongside the fabric's actual-state record.
package metadata

import (
	"encoding/xml"
	"fmt"

	"github.com/digitalocean/go-libvirt"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

// LibvirtClient is the consumer-side interface over the two metadata RPCs
// this package needs. *libvirt.Libvirt satisfies it.
type LibvirtClient interface {
	DomainSetMetadata(Dom libvirt.Domain, Type int32, Metadata libvirt.OptString, Key libvirt.OptString, Uri libvirt.OptString, Flags libvirt.DomainModificationImpact) error
	DomainGetMetadata(Dom libvirt.Domain, Type int32, Uri libvirt.OptString, Flags libvirt.DomainModificationImpact) (string, error)
}

const (
	// MetadataNamespace is the XML namespace for fdurt metadata.
	MetadataNamespace = "http://fdurt.fog.io/v1alpha1"

	// MetadataKey is the key used to store/retrieve metadata from libvirt.
	MetadataKey = "fdurt-fdu-spec"
)

// fduMetadata is the XML structure for storing FDU data in libvirt.
// The spec is stored as YAML text for easy human readability when inspecting
// the domain XML directly.
type fduMetadata struct {
	XMLName xml.Name `xml:"metadata"`
	Xmlns   string   `xml:"xmlns,attr"`
	// SpecYAML contains the FDU spec serialized as YAML
	SpecYAML string `xml:",innerxml"`
}

// Store saves the FDU spec to libvirt domain metadata.
func Store(l LibvirtClient, domain libvirt.Domain, fdu *v1alpha1.FDU) error {
	yamlData, err := yaml.Marshal(fdu)
	if err != nil {
		return fmt.Errorf("failed to marshal FDU spec to YAML: %w", err)
	}

	meta := fduMetadata{
		Xmlns:    MetadataNamespace,
		SpecYAML: string(yamlData),
	}

	xmlData, err := xml.MarshalIndent(meta, "  ", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata to XML: %w", err)
	}

	err = l.DomainSetMetadata(
		domain,
		int32(libvirt.DomainMetadataElement),
		libvirt.OptString{string(xmlData)},
		libvirt.OptString{MetadataKey},
		libvirt.OptString{MetadataNamespace},
		libvirt.DomainModificationImpact(0), // flags: replace
	)
	if err != nil {
		return fmt.Errorf("failed to set libvirt domain metadata: %w", err)
	}

	return nil
}

// Load retrieves the FDU spec from libvirt domain metadata.
func Load(l LibvirtClient, domain libvirt.Domain) (*v1alpha1.FDU, error) {
	xmlStr, err := l.DomainGetMetadata(
		domain,
		int32(libvirt.DomainMetadataElement),
		libvirt.OptString{MetadataNamespace},
		libvirt.DomainModificationImpact(0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get libvirt domain metadata: %w", err)
	}

	var meta fduMetadata
	if err := xml.Unmarshal([]byte(xmlStr), &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata XML: %w", err)
	}

	var fdu v1alpha1.FDU
	if err := yaml.Unmarshal([]byte(meta.SpecYAML), &fdu); err != nil {
		return nil, fmt.Errorf("failed to unmarshal FDU spec from YAML: %w", err)
	}

	return &fdu, nil
}

// Update updates the stored metadata for an existing FDU.
func Update(l LibvirtClient, domain libvirt.Domain, fdu *v1alpha1.FDU) error {
	fdu.Generation++
	return Store(l, domain, fdu)
}

// Delete removes fdurt metadata from a domain. Called during clean_fdu.
func Delete(l LibvirtClient, domain libvirt.Domain) error {
	err := l.DomainSetMetadata(
		domain,
		int32(libvirt.DomainMetadataElement),
		libvirt.OptString{""}, // empty removes metadata
		libvirt.OptString{MetadataKey},
		libvirt.OptString{MetadataNamespace},
		libvirt.DomainModificationImpact(1), // flags: remove
	)
	if err != nil {
		return fmt.Errorf("failed to delete libvirt domain metadata: %w", err)
	}

	return nil
}

// Exists checks if fdurt metadata exists for a domain.
func Exists(l LibvirtClient, domain libvirt.Domain) bool {
	_, err := l.DomainGetMetadata(
		domain,
		int32(libvirt.DomainMetadataElement),
		libvirt.OptString{MetadataNamespace},
		libvirt.DomainModificationImpact(0),
	)
	return err == nil
}
