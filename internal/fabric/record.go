package fabric

import "github.com/jbweber/fdurt/api/v1alpha1"

// entityData is the wire shape of an FDU manifest's variable fields, as
// carried by a desired-state "define" record.
type entityData struct {
	BaseImage string                      `json:"base_image"`
	FlavorID  string                      `json:"flavor_id,omitempty"`
	CPU       int                         `json:"cpu,omitempty"`
	Memory    int                         `json:"memory,omitempty"`
	DiskSize  int                         `json:"disk_size,omitempty"`
	UserData  string                      `json:"user-data,omitempty"`
	SSHKey    string                      `json:"ssh-key,omitempty"`
	Networks  []v1alpha1.NetworkAttachment `json:"networks,omitempty"`
}

// fduRecord is the JSON record stored at a desired- or actual-state FDU key.
type fduRecord struct {
	UUID       string     `json:"uuid"`
	Name       string     `json:"name,omitempty"`
	Status     string     `json:"status"`
	Message    string     `json:"message,omitempty"`
	EntityData entityData `json:"entity_data,omitempty"`
}

// toManifest converts a desired-state "define" record into the FDU manifest
// shape define_fdu consumes.
func (r fduRecord) toManifest() *v1alpha1.FDU {
	fdu := v1alpha1.NewFDU(r.UUID, r.Name)
	fdu.Spec.BaseImage = r.EntityData.BaseImage
	fdu.Spec.FlavorID = r.EntityData.FlavorID
	fdu.Spec.CPU = r.EntityData.CPU
	fdu.Spec.MemoryMB = r.EntityData.Memory
	fdu.Spec.DiskSizeGB = r.EntityData.DiskSize
	fdu.Spec.UserFile = r.EntityData.UserData
	fdu.Spec.SSHKey = r.EntityData.SSHKey
	fdu.Spec.Networks = r.EntityData.Networks
	return fdu
}

// actualRecordFromFDU builds the actual-state record published after an
// engine operation settles. Only status and uuid are guaranteed stable wire
// fields; message carries error detail when status is "error".
func actualRecordFromFDU(fdu *v1alpha1.FDU) fduRecord {
	return fduRecord{
		UUID:    fdu.Spec.UUID,
		Name:    fdu.Name,
		Status:  string(fdu.GetStatusLabel()),
		Message: fdu.Status.Message,
	}
}

// networkRecord is the wire shape of a desired-state network resource,
// keyed by network UUID.
type networkRecord struct {
	UUID          string `json:"uuid"`
	VirtualDevice string `json:"virtual_device"`
}

// pluginRecord is the heartbeat record add_node_plugin writes.
type pluginRecord struct {
	UUID    string `json:"uuid"`
	Name    string `json:"name"`
	Version string `json:"version"`
	PID     int    `json:"pid"`
	Status  string `json:"status"`
}

// imageRecord and flavorRecord mirror the registry types for fabric
// publication.
type imageRecord struct {
	UUID         string `json:"uuid"`
	Name         string `json:"name,omitempty"`
	BaseImageURL string `json:"base_image"`
	Format       string `json:"format"`
	Type         string `json:"type,omitempty"`
	LocalPath    string `json:"local_path,omitempty"`
}

type flavorRecord struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name,omitempty"`
	CPU      int    `json:"cpu"`
	Memory   int    `json:"memory"`
	DiskSize int    `json:"disk_size"`
	Type     string `json:"type,omitempty"`
}
