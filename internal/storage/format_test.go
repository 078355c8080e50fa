package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeQCOW2Fixture writes a file starting with the qcow2 magic bytes.
func writeQCOW2Fixture(t *testing.T, path string) {
	t.Helper()
	data := append([]byte{0x51, 0x46, 0x49, 0xfb}, make([]byte, 508)...)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

// writeRawFixture writes a 512-byte boot sector carrying the MBR signature.
func writeRawFixture(t *testing.T, path string) {
	t.Helper()
	data := make([]byte, 512)
	data[510] = 0x55
	data[511] = 0xaa
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestDetectImageFormat_QCOW2(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.qcow2")
	writeQCOW2Fixture(t, path)

	format, err := DetectImageFormat(path)
	require.NoError(t, err)
	assert.Equal(t, VolumeFormatQCOW2, format)
}

func TestDetectImageFormat_RawWithBootSector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.raw")
	writeRawFixture(t, path)

	format, err := DetectImageFormat(path)
	require.NoError(t, err)
	assert.Equal(t, VolumeFormatRaw, format)
}

func TestDetectImageFormat_ExtensionIsIgnored(t *testing.T) {
	// A qcow2 blob behind a .raw name still detects as qcow2: content wins.
	path := filepath.Join(t.TempDir(), "mislabeled.raw")
	writeQCOW2Fixture(t, path)

	format, err := DetectImageFormat(path)
	require.NoError(t, err)
	assert.Equal(t, VolumeFormatQCOW2, format)
}

func TestDetectImageFormat_NotBootable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.qcow2")
	require.NoError(t, os.WriteFile(path, make([]byte, 1024), 0644))

	_, err := DetectImageFormat(path)
	assert.ErrorContains(t, err, "unsupported or invalid image")
}

func TestDetectImageFormat_TooSmall(t *testing.T) {
	tiny := filepath.Join(t.TempDir(), "tiny")
	require.NoError(t, os.WriteFile(tiny, []byte{0x51}, 0644))
	_, err := DetectImageFormat(tiny)
	assert.ErrorContains(t, err, "too small")

	short := filepath.Join(t.TempDir(), "short")
	require.NoError(t, os.WriteFile(short, make([]byte, 100), 0644))
	_, err = DetectImageFormat(short)
	assert.ErrorContains(t, err, "too small")
}

func TestDetectImageFormat_MissingFile(t *testing.T) {
	_, err := DetectImageFormat(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
