package v1alpha1

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// GroupName is the API group for fdurt resources.
	GroupName = "fdurt.fog.io"

	// Version is the API version.
	Version = "v1alpha1"

	ImageKind       = "Image"
	FlavorKind      = "Flavor"
	FDUKind         = "FDU"
	PluginStateKind = "PluginState"
)

// NewFDU creates a new FDU with TypeMeta and ObjectMeta defaults and state DEFINED.
func NewFDU(uuidStr, name string) *FDU {
	now := Time{Time: time.Now()}

	return &FDU{
		TypeMeta: TypeMeta{
			APIVersion: GroupName + "/" + Version,
			Kind:       FDUKind,
		},
		ObjectMeta: ObjectMeta{
			Name:              name,
			UID:               uuid.New().String(),
			CreationTimestamp: now,
			Generation:        1,
		},
		Spec: FDUSpec{
			UUID: uuidStr,
			Name: name,
		},
		Status: FDUStatus{
			State:       FDUStateDefined,
			StatusLabel: StatusLabelDefined,
		},
	}
}

// SetDefaultAPIVersion ensures the FDU has the correct apiVersion and kind.
// Useful when loading from files that might be missing these fields.
func SetDefaultAPIVersion(fdu *FDU) {
	if fdu.APIVersion == "" {
		fdu.APIVersion = GroupName + "/" + Version
	}
	if fdu.Kind == "" {
		fdu.Kind = FDUKind
	}
}

// GetName returns the FDU name from metadata.
func (f *FDU) GetName() string {
	return f.Name
}

// SetState sets the coarse lifecycle state.
func (f *FDU) SetState(state FDUState) {
	f.Status.State = state
}

// GetState returns the current lifecycle state.
func (f *FDU) GetState() FDUState {
	return f.Status.State
}

// SetStatusLabel sets the fine-grained fabric status label.
func (f *FDU) SetStatusLabel(label FDUStatusLabel) {
	f.Status.StatusLabel = label
}

// GetStatusLabel returns the fine-grained fabric status label.
func (f *FDU) GetStatusLabel() FDUStatusLabel {
	return f.Status.StatusLabel
}

// UpdateObservedGeneration updates status.observedGeneration to match metadata.generation.
func (f *FDU) UpdateObservedGeneration() {
	f.Status.ObservedGeneration = f.Generation
}

// DiskFileName returns the "{uuid}.{format}" basename for the working disk,
// matching the filesystem layout's disks/{uuid}.{format}.
func (f *FDU) DiskFileName(format string) string {
	return fmt.Sprintf("%s.%s", f.Spec.UUID, format)
}

// CdromFileName returns the "{uuid}_config.iso" basename for the config drive.
func (f *FDU) CdromFileName() string {
	return fmt.Sprintf("%s_config.iso", f.Spec.UUID)
}

// Normalize sanitizes user input to consistent formats. Called automatically
// before validation.
func (f *FDU) Normalize() {
	f.Name = strings.ToLower(strings.TrimSpace(f.Name))
	f.Spec.Name = f.Name
	f.Spec.UUID = strings.TrimSpace(f.Spec.UUID)
	f.Spec.BaseImage = strings.TrimSpace(f.Spec.BaseImage)

	for i := range f.Spec.Networks {
		if f.Spec.Networks[i].IntfName == "" {
			f.Spec.Networks[i].IntfName = fmt.Sprintf("veth%d", i)
		}
	}
}

// IsUUID reports whether s parses as a UUID, used to distinguish a registry
// reference from a bare URL in define_fdu's image-resolution step.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
