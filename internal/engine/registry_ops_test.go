package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

// qcow2Blob is a minimal buffer carrying the qcow2 magic bytes, enough for
// format sniffing to succeed.
func qcow2Blob() []byte {
	return append([]byte{0x51, 0x46, 0x49, 0xfb}, make([]byte, 508)...)
}

func TestAddImage_MaterializesFromFileURL(t *testing.T) {
	te := newTestEngine()
	te.disk.imageDir = t.TempDir()

	src := filepath.Join(t.TempDir(), "cirros.qcow2")
	require.NoError(t, os.WriteFile(src, qcow2Blob(), 0644))

	img := &v1alpha1.Image{
		Spec: v1alpha1.ImageSpec{
			UUID:         "img-1",
			BaseImageURL: "file://" + src,
			Format:       "qcow2",
			Type:         "kvm",
		},
	}
	require.NoError(t, te.AddImage(img))

	// The cache is keyed by the source URL's basename, not the image UUID.
	assert.Equal(t, filepath.Join(te.disk.imageDir, "cirros.qcow2"), img.Status.LocalPath)
	_, err := os.Stat(img.Status.LocalPath)
	assert.NoError(t, err)

	// Registered locally and published to the fabric.
	_, ok := te.reg.getImage("img-1")
	assert.True(t, ok)
	assert.Contains(t, te.fabric.images, "img-1")
}

func TestAddImage_FillsFormatFromContent(t *testing.T) {
	te := newTestEngine()
	te.disk.imageDir = t.TempDir()

	src := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(src, qcow2Blob(), 0644))

	img := &v1alpha1.Image{
		Spec: v1alpha1.ImageSpec{
			UUID:         "img-2",
			BaseImageURL: "file://" + src,
		},
	}
	require.NoError(t, te.AddImage(img))
	assert.Equal(t, "qcow2", img.Spec.Format)
}

func TestAddImage_UnsupportedScheme(t *testing.T) {
	te := newTestEngine()

	img := &v1alpha1.Image{
		Spec: v1alpha1.ImageSpec{UUID: "img-3", BaseImageURL: "ftp://example/disk.qcow2"},
	}
	err := te.AddImage(img)
	require.Error(t, err)
	assert.IsType(t, &ExternalCommandFailureError{}, err)
}

func TestRemoveImage_RetractsFromFabric(t *testing.T) {
	te := newTestEngine()
	te.disk.imageDir = t.TempDir()

	src := filepath.Join(t.TempDir(), "cirros.qcow2")
	require.NoError(t, os.WriteFile(src, qcow2Blob(), 0644))

	img := &v1alpha1.Image{
		Spec: v1alpha1.ImageSpec{UUID: "img-1", BaseImageURL: "file://" + src, Format: "qcow2"},
	}
	require.NoError(t, te.AddImage(img))

	require.NoError(t, te.RemoveImage("img-1"))
	_, ok := te.reg.getImage("img-1")
	assert.False(t, ok)
	assert.NotContains(t, te.fabric.images, "img-1")
	assert.Contains(t, te.disk.removed, img.Status.LocalPath)
}

func TestRemoveImage_Unregistered(t *testing.T) {
	te := newTestEngine()
	assert.Error(t, te.RemoveImage("ghost"))
}

func TestFlavorRegistryPublishes(t *testing.T) {
	te := newTestEngine()

	f := &v1alpha1.Flavor{Spec: v1alpha1.FlavorSpec{UUID: "flavor-1", CPU: 1, MemoryMB: 512, DiskSizeGB: 5}}
	te.AddFlavor(f)
	assert.Contains(t, te.fabric.flavors, "flavor-1")

	te.RemoveFlavor("flavor-1")
	assert.NotContains(t, te.fabric.flavors, "flavor-1")
	_, ok := te.reg.getFlavor("flavor-1")
	assert.False(t, ok)
}

func TestShutdown_TearsDownAllFDUs(t *testing.T) {
	te := newTestEngine()
	defineAndConfigure(t, te)
	require.NoError(t, te.RunFDU(testFDUUUID))
	te.hv.stateAfterShutdown = domainStateShutoff

	te.Shutdown()

	// The FDU was driven stop → clean → undefine and is gone, along with
	// every registered image and flavor.
	_, err := te.getFDU(testFDUUUID)
	assert.Error(t, err)
	assert.Empty(t, te.reg.imageUUIDs())
	assert.Empty(t, te.reg.flavorUUIDs())
	assert.Contains(t, te.fabric.removed, testFDUUUID)
}

func TestShutdown_PausedFDUResumesFirst(t *testing.T) {
	te := newTestEngine()
	defineAndConfigure(t, te)
	require.NoError(t, te.RunFDU(testFDUUUID))
	require.NoError(t, te.PauseFDU(testFDUUUID))
	te.hv.stateAfterShutdown = domainStateShutoff

	te.Shutdown()

	_, err := te.getFDU(testFDUUUID)
	assert.Error(t, err)
}
