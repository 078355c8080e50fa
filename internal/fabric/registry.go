package fabric

import (
	"context"
	"fmt"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

// PublishFDU writes the FDU's current status label to the actual-state key,
// satisfying the engine's "publish {status: ...}" step after every
// operation.
func (c *Client) PublishFDU(fdu *v1alpha1.FDU) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()
	return put(ctx, c.cli, c.actualFDUKey(fdu.Spec.UUID), actualRecordFromFDU(fdu))
}

// RemoveFDU deletes the actual-state record for an undefined FDU.
func (c *Client) RemoveFDU(uuid string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()
	return del(ctx, c.cli, c.actualFDUKey(uuid))
}

// GetFDU reads back the actual-state record for uuid, mirroring get_node_fdu.
func (c *Client) GetFDU(uuid string) (*v1alpha1.FDU, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()

	var rec fduRecord
	found, err := get(ctx, c.cli, c.actualFDUKey(uuid), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("fdu %s not found", uuid)
	}
	fdu := rec.toManifest()
	fdu.Status.StatusLabel = v1alpha1.FDUStatusLabel(rec.Status)
	return fdu, nil
}

// AddImage publishes an image's registry entry, mirroring add_node_image.
func (c *Client) AddImage(img *v1alpha1.Image) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()
	rec := imageRecord{
		UUID:         img.Spec.UUID,
		Name:         img.Name,
		BaseImageURL: img.Spec.BaseImageURL,
		Format:       img.Spec.Format,
		Type:         img.Spec.Type,
		LocalPath:    img.Status.LocalPath,
	}
	return put(ctx, c.cli, c.actualImageKey(img.Spec.UUID), rec)
}

// RemoveImage deletes an image's registry entry, mirroring remove_node_image.
func (c *Client) RemoveImage(uuid string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()
	return del(ctx, c.cli, c.actualImageKey(uuid))
}

// AddFlavor publishes a flavor's registry entry, mirroring add_node_flavor.
func (c *Client) AddFlavor(f *v1alpha1.Flavor) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()
	rec := flavorRecord{
		UUID:     f.Spec.UUID,
		Name:     f.Name,
		CPU:      f.Spec.CPU,
		Memory:   f.Spec.MemoryMB,
		DiskSize: f.Spec.DiskSizeGB,
		Type:     f.Spec.Type,
	}
	return put(ctx, c.cli, c.actualFlavorKey(f.Spec.UUID), rec)
}

// RemoveFlavor deletes a flavor's registry entry, mirroring remove_node_flavor.
func (c *Client) RemoveFlavor(uuid string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()
	return del(ctx, c.cli, c.actualFlavorKey(uuid))
}

// FindNodeNetwork looks up a desired-state network resource by UUID and
// returns its host bridge device name.
func (c *Client) FindNodeNetwork(networkUUID string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()

	var rec networkRecord
	found, err := get(ctx, c.cli, c.networkKey(networkUUID), &rec)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("network %s not found", networkUUID)
	}
	return rec.VirtualDevice, nil
}

// PublishDesired writes a desired-state record for an FDU, carrying the
// action the node's engine should take next. Operator tooling uses this to
// feed the same keyspace the observer watches; for "define" the manifest's
// entity data rides along.
func (c *Client) PublishDesired(fdu *v1alpha1.FDU, action string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()

	rec := fduRecord{
		UUID:   fdu.Spec.UUID,
		Name:   fdu.Name,
		Status: action,
		EntityData: entityData{
			BaseImage: fdu.Spec.BaseImage,
			FlavorID:  fdu.Spec.FlavorID,
			CPU:       fdu.Spec.CPU,
			Memory:    fdu.Spec.MemoryMB,
			DiskSize:  fdu.Spec.DiskSizeGB,
			UserData:  fdu.Spec.UserFile,
			SSHKey:    fdu.Spec.SSHKey,
			Networks:  fdu.Spec.Networks,
		},
	}
	return put(ctx, c.cli, c.desiredFDUKey(fdu.Spec.UUID), rec)
}

// AddPlugin publishes the plugin's own heartbeat record, mirroring
// add_node_plugin.
func (c *Client) AddPlugin(state *v1alpha1.PluginState) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()
	rec := pluginRecord{
		UUID:    state.UUID,
		Name:    state.Name,
		Version: state.Version,
		PID:     state.PID,
		Status:  state.Status,
	}
	return put(ctx, c.cli, c.pluginKey(), rec)
}

// GetNodeConfiguration reads the node-scoped configuration blob, mirroring
// get_node_configuration.
func (c *Client) GetNodeConfiguration() (map[string]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()

	var cfg map[string]string
	found, err := get(ctx, c.cli, c.configurationKey(), &cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		return map[string]string{}, nil
	}
	return cfg, nil
}
