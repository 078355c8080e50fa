package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPoolWithManager(t *testing.T) (*mockStorageLibvirt, *Manager) {
	t.Helper()
	client := newMockStorageLibvirt()
	mgr := NewManager(client)
	require.NoError(t, mgr.EnsureDefaultPools(context.Background()))
	return client, mgr
}

func TestManager_CreateVolume(t *testing.T) {
	_, mgr := newPoolWithManager(t)

	spec := VolumeSpec{
		Name:       testDiskVolume,
		Type:       VolumeTypeDisk,
		Format:     VolumeFormatQCOW2,
		CapacityGB: 20,
	}
	require.NoError(t, mgr.CreateVolume(context.Background(), DefaultDisksPool, spec))

	exists, err := mgr.VolumeExists(context.Background(), DefaultDisksPool, testDiskVolume)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestManager_CreateVolume_InvalidSpec(t *testing.T) {
	_, mgr := newPoolWithManager(t)

	err := mgr.CreateVolume(context.Background(), DefaultDisksPool, VolumeSpec{Name: ""})
	assert.ErrorContains(t, err, "invalid volume spec")
}

func TestManager_CreateVolume_PoolMissing(t *testing.T) {
	mgr := NewManager(newMockStorageLibvirt())

	spec := VolumeSpec{
		Name:       testDiskVolume,
		Type:       VolumeTypeDisk,
		Format:     VolumeFormatQCOW2,
		CapacityGB: 20,
	}
	assert.ErrorContains(t, mgr.CreateVolume(context.Background(), "ghost", spec), "pool not found")
}

func TestManager_CreateVolume_Duplicate(t *testing.T) {
	_, mgr := newPoolWithManager(t)

	spec := VolumeSpec{
		Name:       testDiskVolume,
		Type:       VolumeTypeDisk,
		Format:     VolumeFormatQCOW2,
		CapacityGB: 20,
	}
	require.NoError(t, mgr.CreateVolume(context.Background(), DefaultDisksPool, spec))
	assert.Error(t, mgr.CreateVolume(context.Background(), DefaultDisksPool, spec))
}

func TestManager_DeleteVolume(t *testing.T) {
	_, mgr := newPoolWithManager(t)

	spec := VolumeSpec{
		Name:       testDiskVolume,
		Type:       VolumeTypeDisk,
		Format:     VolumeFormatQCOW2,
		CapacityGB: 20,
	}
	require.NoError(t, mgr.CreateVolume(context.Background(), DefaultDisksPool, spec))
	require.NoError(t, mgr.DeleteVolume(context.Background(), DefaultDisksPool, testDiskVolume))

	exists, err := mgr.VolumeExists(context.Background(), DefaultDisksPool, testDiskVolume)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestManager_DeleteVolume_NotFound(t *testing.T) {
	_, mgr := newPoolWithManager(t)
	assert.ErrorContains(t, mgr.DeleteVolume(context.Background(), DefaultDisksPool, "ghost.qcow2"), "volume not found")
}

func TestManager_ListVolumes(t *testing.T) {
	_, mgr := newPoolWithManager(t)

	for _, name := range []string{testDiskVolume, "22222222-2222-2222-2222-222222222222.raw"} {
		format := VolumeFormatQCOW2
		if name[len(name)-3:] == "raw" {
			format = VolumeFormatRaw
		}
		spec := VolumeSpec{Name: name, Type: VolumeTypeDisk, Format: format, CapacityGB: 5}
		require.NoError(t, mgr.CreateVolume(context.Background(), DefaultDisksPool, spec))
	}

	volumes, err := mgr.ListVolumes(context.Background(), DefaultDisksPool)
	require.NoError(t, err)
	require.Len(t, volumes, 2)

	byName := map[string]VolumeInfo{}
	for _, v := range volumes {
		byName[v.Name] = v
		assert.Equal(t, DefaultDisksPool, v.Pool)
		assert.NotEmpty(t, v.Path)
	}
	assert.Equal(t, VolumeFormatQCOW2, byName[testDiskVolume].Format)
	assert.Equal(t, VolumeFormatRaw, byName["22222222-2222-2222-2222-222222222222.raw"].Format)
}

func TestManager_GetVolumePath(t *testing.T) {
	_, mgr := newPoolWithManager(t)

	spec := VolumeSpec{
		Name:       testDiskVolume,
		Type:       VolumeTypeDisk,
		Format:     VolumeFormatQCOW2,
		CapacityGB: 5,
	}
	require.NoError(t, mgr.CreateVolume(context.Background(), DefaultDisksPool, spec))

	path, err := mgr.GetVolumePath(context.Background(), DefaultDisksPool, testDiskVolume)
	require.NoError(t, err)
	assert.Contains(t, path, testDiskVolume)
}

func TestManager_WriteVolumeData(t *testing.T) {
	client, mgr := newPoolWithManager(t)

	spec := VolumeSpec{
		Name:   "11111111-1111-1111-1111-111111111111_config",
		Type:   VolumeTypeConfigDrive,
		Format: VolumeFormatRaw,
	}
	require.NoError(t, mgr.CreateVolume(context.Background(), DefaultDisksPool, spec))

	payload := []byte("cidata")
	require.NoError(t, mgr.WriteVolumeData(context.Background(), DefaultDisksPool, spec.Name, payload))

	vol := client.volumes[DefaultDisksPool][spec.Name]
	require.NotNil(t, vol)
	assert.Equal(t, payload, vol.data)
	assert.Equal(t, uint64(len(payload)), vol.allocated)
}

func TestGenerateVolumeXML_Backing(t *testing.T) {
	spec := VolumeSpec{
		Name:          testDiskVolume,
		Type:          VolumeTypeDisk,
		Format:        VolumeFormatQCOW2,
		CapacityGB:    20,
		BackingVolume: "/var/lib/libvirt/images/fdurt/images/cirros.qcow2",
	}

	xml, err := generateVolumeXML(spec)
	require.NoError(t, err)
	assert.Contains(t, xml, "<name>"+testDiskVolume+"</name>")
	assert.Contains(t, xml, "<path>/var/lib/libvirt/images/fdurt/images/cirros.qcow2</path>")
	assert.Contains(t, xml, `type="qcow2"`)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, VolumeFormatQCOW2, formatFromPath("/x/a.qcow2"))
	assert.Equal(t, VolumeFormatRaw, formatFromPath("/x/a.raw"))
	assert.Equal(t, VolumeFormatRaw, formatFromPath("/x/a.img"))
	assert.Equal(t, VolumeFormatQCOW2, formatFromPath("/x/noext"))
}
