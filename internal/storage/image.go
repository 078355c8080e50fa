package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ImportImage imports a base image from a local file into the fdu-images
// pool as a new volume, normalizing the volume name's extension to match
// the detected format.
func (m *Manager) ImportImage(ctx context.Context, filePath, imageName string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("failed to stat image file: %w", err)
	}
	sizeGB := uint64(info.Size()/(1024*1024*1024)) + 1

	format, err := DetectImageFormat(filePath)
	if err != nil {
		return fmt.Errorf("image validation failed: %w", err)
	}

	imageName = normalizeImageName(imageName, format)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read image file: %w", err)
	}

	spec := VolumeSpec{
		Name:       imageName,
		Type:       VolumeTypeBaseImage,
		Format:     format,
		CapacityGB: sizeGB,
	}
	if err := m.CreateVolume(ctx, DefaultImagesPool, spec); err != nil {
		return fmt.Errorf("failed to create image volume: %w", err)
	}

	if err := m.WriteVolumeData(ctx, DefaultImagesPool, imageName, data); err != nil {
		_ = m.DeleteVolume(ctx, DefaultImagesPool, imageName)
		return fmt.Errorf("failed to upload image data: %w", err)
	}

	return nil
}

// PullImage downloads a base image over HTTP and imports it. When checksum
// is non-empty it must be the hex SHA-256 of the blob; a mismatch aborts
// before anything reaches the pool.
func (m *Manager) PullImage(ctx context.Context, url, imageName, checksum string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("invalid image URL %s: %w", url, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp("", "fdurt-image-*")
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), resp.Body); err != nil {
		return fmt.Errorf("failed to stage %s: %w", url, err)
	}

	if checksum != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(got, checksum) {
			return fmt.Errorf("checksum mismatch for %s: got %s, want %s", url, got, checksum)
		}
	}

	return m.ImportImage(ctx, tmp.Name(), imageName)
}

// ListImages lists all base images in the fdu-images pool.
func (m *Manager) ListImages(ctx context.Context) ([]VolumeInfo, error) {
	return m.ListVolumes(ctx, DefaultImagesPool)
}

// DeleteImage deletes a base image from the fdu-images pool.
// TODO: honor force=false by refusing when the image still backs a
// configured FDU's disk; requires walking fdu-disks volumes' backing stores.
func (m *Manager) DeleteImage(ctx context.Context, imageName string, force bool) error {
	_ = force
	return m.DeleteVolume(ctx, DefaultImagesPool, imageName)
}

// GetImagePath gets the full filesystem path for a base image.
func (m *Manager) GetImagePath(ctx context.Context, imageName string) (string, error) {
	return m.GetVolumePath(ctx, DefaultImagesPool, imageName)
}

// ImageExists checks if a base image exists in the fdu-images pool.
func (m *Manager) ImageExists(ctx context.Context, imageName string) (bool, error) {
	return m.VolumeExists(ctx, DefaultImagesPool, imageName)
}

// normalizeImageName forces the volume name's extension to agree with the
// detected format, so formatFromPath round-trips correctly later.
func normalizeImageName(imageName string, format VolumeFormat) string {
	want := ".qcow2"
	if format == VolumeFormatRaw {
		want = ".raw"
	}
	if strings.HasSuffix(imageName, want) {
		return imageName
	}
	if ext := filepath.Ext(imageName); ext != "" {
		imageName = strings.TrimSuffix(imageName, ext)
	}
	return imageName + want
}
