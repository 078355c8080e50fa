package v1alpha1

// Image describes a base disk blob that one or more FDUs are instantiated from.
//
// +kubebuilder:object:root=true
type Image struct {
	// TypeMeta contains the API version and kind.
	TypeMeta `json:",inline" yaml:",inline"`

	// ObjectMeta contains metadata like name, labels, annotations.
	// +optional
	ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	Spec ImageSpec `json:"spec" yaml:"spec"`

	// +optional
	Status ImageStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// ImageSpec defines the desired state of an Image.
//
// +k8s:deepcopy-gen=true
type ImageSpec struct {
	// UUID is the canonical identifier for this image, used to bind FDUs to it.
	UUID string `json:"uuid" yaml:"uuid"`

	// BaseImageURL is either an http(s):// URL to fetch, or a file:// path to copy.
	BaseImageURL string `json:"baseImageURL" yaml:"baseImageURL"`

	// Format is the disk format, normally derived from the file extension
	// of BaseImageURL (e.g. "qcow2", "raw").
	Format string `json:"format" yaml:"format"`

	// Type is always "kvm" for this plugin; carried for parity with the fabric's
	// cross-runtime image schema.
	// +optional
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// ImageStatus defines the observed state of an Image.
//
// +k8s:deepcopy-gen=true
type ImageStatus struct {
	// LocalPath is the filesystem path the image was materialized to.
	// Empty until materialization has completed.
	// +optional
	LocalPath string `json:"localPath,omitempty" yaml:"localPath,omitempty"`
}

// Flavor describes a resource shape: {cpu, memory, disk_size}.
//
// +kubebuilder:object:root=true
type Flavor struct {
	TypeMeta `json:",inline" yaml:",inline"`

	// +optional
	ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	Spec FlavorSpec `json:"spec" yaml:"spec"`
}

// FlavorSpec is pure metadata; a Flavor has no materialized state.
//
// +k8s:deepcopy-gen=true
type FlavorSpec struct {
	UUID string `json:"uuid" yaml:"uuid"`

	// CPU is the virtual CPU count.
	CPU int `json:"cpu" yaml:"cpu"`

	// MemoryMB is memory in megabytes.
	MemoryMB int `json:"memory" yaml:"memory"`

	// DiskSizeGB is the boot disk size in gigabytes.
	DiskSizeGB int `json:"diskSize" yaml:"diskSize"`

	// +optional
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// FDUState is the lifecycle state of a Fog Deployment Unit.
type FDUState string

const (
	// FDUStateDefined means the FDU record exists with resolved image/flavor
	// references but no disk files or libvirt domain.
	FDUStateDefined FDUState = "DEFINED"

	// FDUStateConfigured means disk, cdrom and libvirt domain all exist but
	// the domain is not running.
	FDUStateConfigured FDUState = "CONFIGURED"

	// FDUStateRunning means the libvirt domain is active.
	FDUStateRunning FDUState = "RUNNING"

	// FDUStatePaused means the libvirt domain is suspended.
	FDUStatePaused FDUState = "PAUSED"
)

// FDUStatusLabel is a transient semantic label published to the fabric; it is
// richer than FDUState (which only tracks local invariants) because it also
// communicates in-flight transitions like "starting".
type FDUStatusLabel string

const (
	StatusLabelDefined    FDUStatusLabel = "defined"
	StatusLabelConfigured FDUStatusLabel = "configured"
	StatusLabelStarting   FDUStatusLabel = "starting"
	StatusLabelRun        FDUStatusLabel = "run"
	StatusLabelPause      FDUStatusLabel = "pause"
	StatusLabelStop       FDUStatusLabel = "stop"
	StatusLabelError      FDUStatusLabel = "error"
)

// NetworkAttachment describes one network interface to attach to an FDU's
// domain. Most fields are resolved by the LifecycleEngine at configure time.
//
// +k8s:deepcopy-gen=true
type NetworkAttachment struct {
	// Type selects the attachment kind. "wifi" triggers direct-interface
	// resolution; anything else with NetworkUUID set triggers bridge resolution.
	Type string `json:"type" yaml:"type"`

	// +optional
	NetworkUUID string `json:"networkUUID,omitempty" yaml:"networkUUID,omitempty"`

	// IntfName is the guest-visible interface name. Defaults to "veth{index}"
	// if left blank at configure time.
	// +optional
	IntfName string `json:"intfName,omitempty" yaml:"intfName,omitempty"`

	// BrName is the host bridge device, stamped from the resolved network's
	// virtual_device when NetworkUUID is set.
	// +optional
	BrName string `json:"brName,omitempty" yaml:"brName,omitempty"`

	// DirectIntf is the host wireless interface stamped when Type == "wifi".
	// +optional
	DirectIntf string `json:"directIntf,omitempty" yaml:"directIntf,omitempty"`
}

// FDU is a Fog Deployment Unit: a KVM virtual machine managed through its
// full lifecycle by the LifecycleEngine.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
type FDU struct {
	TypeMeta `json:",inline" yaml:",inline"`

	// +optional
	ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	Spec FDUSpec `json:"spec" yaml:"spec"`

	// +optional
	Status FDUStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// FDUSpec is the desired configuration of an FDU, as carried by a manifest
// from the fabric's desired-state channel.
//
// +k8s:deepcopy-gen=true
type FDUSpec struct {
	UUID string `json:"uuid" yaml:"uuid"`
	Name string `json:"name" yaml:"name"`

	// BaseImage is either an image UUID already present in the registry, or
	// a URL to derive a new image from. Resolved by define_fdu.
	BaseImage string `json:"baseImage" yaml:"baseImage"`

	// FlavorID, if set, must resolve in the flavor registry. If unset, a
	// flavor is derived from CPU/MemoryMB/DiskSizeGB.
	// +optional
	FlavorID string `json:"flavorID,omitempty" yaml:"flavorID,omitempty"`

	// +optional
	CPU int `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	// +optional
	MemoryMB int `json:"memory,omitempty" yaml:"memory,omitempty"`
	// +optional
	DiskSizeGB int `json:"diskSize,omitempty" yaml:"diskSize,omitempty"`

	// +optional
	Networks []NetworkAttachment `json:"networks,omitempty" yaml:"networks,omitempty"`

	// UserFile is raw cloud-init user-data content, if supplied.
	// +optional
	UserFile string `json:"userData,omitempty" yaml:"userData,omitempty"`

	// SSHKey is a single SSH public key, validated at define time.
	// +optional
	SSHKey string `json:"sshKey,omitempty" yaml:"sshKey,omitempty"`
}

// FDUStatus is the observed state of an FDU.
//
// +k8s:deepcopy-gen=true
type FDUStatus struct {
	// State is the coarse lifecycle state enforced by the engine's transition rules.
	// +optional
	State FDUState `json:"state,omitempty" yaml:"state,omitempty"`

	// StatusLabel is the fine-grained label published to the fabric.
	// +optional
	StatusLabel FDUStatusLabel `json:"statusLabel,omitempty" yaml:"statusLabel,omitempty"`

	// ImageID and FlavorID are the canonical, resolved registry references —
	// never the raw manifest values (which may have been a URL or blank).
	// +optional
	ImageID string `json:"imageID,omitempty" yaml:"imageID,omitempty"`
	// +optional
	FlavorID string `json:"flavorID,omitempty" yaml:"flavorID,omitempty"`

	// DiskPath and CdromPath are populated once the FDU leaves DEFINED.
	// +optional
	DiskPath string `json:"diskPath,omitempty" yaml:"diskPath,omitempty"`
	// +optional
	CdromPath string `json:"cdromPath,omitempty" yaml:"cdromPath,omitempty"`

	// DomainXML is the last rendered libvirt domain XML, cached for diagnostics.
	// +optional
	DomainXML string `json:"domainXML,omitempty" yaml:"domainXML,omitempty"`

	// Message carries the human-readable detail for an error status.
	// +optional
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// Conditions record auxiliary observations (storage provisioned, network
	// configured, cloud-init ready) alongside the coarse State.
	// +optional
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// ObservedGeneration reflects the generation most recently observed.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty" yaml:"observedGeneration,omitempty"`
}

// Standard condition types for FDU resources.
const (
	ConditionReady              = "Ready"
	ConditionStorageProvisioned = "StorageProvisioned"
	ConditionNetworkConfigured  = "NetworkConfigured"
	ConditionCloudInitReady     = "CloudInitReady"
)

// PluginState is the single per-node record published at startup and kept
// current for the lifetime of the process.
//
// +k8s:deepcopy-gen=true
type PluginState struct {
	UUID    string `json:"uuid" yaml:"uuid"`
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	PID     int    `json:"pid" yaml:"pid"`

	// Status is "running" or "stopped".
	Status string `json:"status" yaml:"status"`

	// Configuration is an opaque blob mirroring the loaded PluginConfig,
	// published for operator visibility via the fabric.
	// +optional
	Configuration map[string]string `json:"configuration,omitempty" yaml:"configuration,omitempty"`
}

// DeepCopy creates a deep copy of Image.
func (in *Image) DeepCopy() *Image {
	if in == nil {
		return nil
	}
	out := new(Image)
	out.TypeMeta = *in.TypeMeta.DeepCopy()
	out.ObjectMeta = *in.ObjectMeta.DeepCopy()
	out.Spec = in.Spec
	out.Status = in.Status
	return out
}

// DeepCopy creates a deep copy of Flavor.
func (in *Flavor) DeepCopy() *Flavor {
	if in == nil {
		return nil
	}
	out := new(Flavor)
	out.TypeMeta = *in.TypeMeta.DeepCopy()
	out.ObjectMeta = *in.ObjectMeta.DeepCopy()
	out.Spec = in.Spec
	return out
}

// DeepCopy creates a deep copy of NetworkAttachment.
func (in *NetworkAttachment) DeepCopy() *NetworkAttachment {
	if in == nil {
		return nil
	}
	out := new(NetworkAttachment)
	*out = *in
	return out
}

// DeepCopy creates a deep copy of FDUSpec.
func (in *FDUSpec) DeepCopy() *FDUSpec {
	if in == nil {
		return nil
	}
	out := new(FDUSpec)
	*out = *in

	if in.Networks != nil {
		out.Networks = make([]NetworkAttachment, len(in.Networks))
		for i := range in.Networks {
			out.Networks[i] = *in.Networks[i].DeepCopy()
		}
	}

	return out
}

// DeepCopy creates a deep copy of FDUStatus.
func (in *FDUStatus) DeepCopy() *FDUStatus {
	if in == nil {
		return nil
	}
	out := new(FDUStatus)
	*out = *in

	if in.Conditions != nil {
		out.Conditions = make([]Condition, len(in.Conditions))
		for i := range in.Conditions {
			out.Conditions[i] = *in.Conditions[i].DeepCopy()
		}
	}

	return out
}

// DeepCopy creates a deep copy of FDU.
func (in *FDU) DeepCopy() *FDU {
	if in == nil {
		return nil
	}
	out := new(FDU)
	out.TypeMeta = *in.TypeMeta.DeepCopy()
	out.ObjectMeta = *in.ObjectMeta.DeepCopy()
	out.Spec = *in.Spec.DeepCopy()
	out.Status = *in.Status.DeepCopy()
	return out
}

// DeepCopy creates a deep copy of PluginState.
func (in *PluginState) DeepCopy() *PluginState {
	if in == nil {
		return nil
	}
	out := new(PluginState)
	*out = *in
	if in.Configuration != nil {
		out.Configuration = make(map[string]string, len(in.Configuration))
		for k, v := range in.Configuration {
			out.Configuration[k] = v
		}
	}
	return out
}
