// Package disk manages the working disk, config-drive, and cached image
// files configure_fdu allocates under PluginConfig.BaseDir.
//
// NOTE: this uses qemu-img and dd directly rather than libvirt storage
// pools/volumes (see internal/storage for the pool-backed track). Simpler
// to reason about when every FDU's disk is a plain file keyed by UUID.
package disk

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/jbweber/fdurt/internal/config"
	"github.com/jbweber/fdurt/internal/naming"
)

const (
	// DirPermissions are the permissions for the disks/images directories.
	DirPermissions = 0755

	// FilePermissions are the permissions for written disk/config-drive files.
	FilePermissions = 0644
)

// Manager handles filesystem operations for FDU working disks, config
// drives, and cached base images.
type Manager struct {
	disksDir  string
	imagesDir string
	logsDir   string
}

// NewManager creates a storage manager rooted at cfg's disks/ and images/
// directories, creating them if they don't already exist.
func NewManager(cfg *config.PluginConfig) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("plugin configuration cannot be nil")
	}

	m := &Manager{
		disksDir:  cfg.DisksDir(),
		imagesDir: cfg.ImagesDir(),
		logsDir:   cfg.LogsDir(),
	}

	for _, dir := range []string{m.disksDir, m.imagesDir, m.logsDir} {
		if err := os.MkdirAll(dir, DirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return m, nil
}

// DiskPath returns the working disk path for an FDU: disks/{uuid}.{format}.
func (m *Manager) DiskPath(uuid, format string) string {
	return filepath.Join(m.disksDir, naming.DiskFileName(uuid, format))
}

// ConfigDrivePath returns the config-drive path for an FDU:
// disks/{uuid}_config.iso.
func (m *Manager) ConfigDrivePath(uuid string) string {
	return filepath.Join(m.disksDir, naming.ConfigDriveFileName(uuid))
}

// LogPath returns the per-FDU log file location: logs/{uuid}.
func (m *Manager) LogPath(uuid string) string {
	return filepath.Join(m.logsDir, uuid)
}

// ImagePath returns the cached location of a base image by filename.
func (m *Manager) ImagePath(filename string) string {
	return filepath.Join(m.imagesDir, filename)
}

// CreateDisk allocates a new empty working disk via qemu-img create.
func (m *Manager) CreateDisk(diskPath, format string, sizeGB int) error {
	if diskPath == "" {
		return fmt.Errorf("disk path cannot be empty")
	}
	if sizeGB <= 0 {
		return fmt.Errorf("disk size must be > 0, got %d", sizeGB)
	}

	cmd := exec.Command(
		"qemu-img", "create",
		"-f", format,
		diskPath,
		fmt.Sprintf("%dG", sizeGB),
	)

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create disk %s: %w\nOutput: %s", diskPath, err, string(output))
	}

	return nil
}

// CopyImage copies a base image into a working disk via dd (bs=4M), writing
// over the start of the disk file that CreateDisk allocated.
func (m *Manager) CopyImage(srcPath, diskPath string) error {
	if srcPath == "" {
		return fmt.Errorf("source image path cannot be empty")
	}
	if diskPath == "" {
		return fmt.Errorf("destination disk path cannot be empty")
	}

	cmd := exec.Command(
		"dd",
		fmt.Sprintf("if=%s", srcPath),
		fmt.Sprintf("of=%s", diskPath),
		"bs=4M",
	)

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to copy image %s to %s: %w\nOutput: %s", srcPath, diskPath, err, string(output))
	}

	return nil
}

// WriteConfigDrive writes an assembled config-drive ISO to disk.
func (m *Manager) WriteConfigDrive(path string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("config drive data cannot be empty")
	}

	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write config drive %s: %w", path, err)
	}

	return nil
}

// RemoveFiles deletes the given files: configure_fdu's transient key,
// user-data and vendor-data files, clean_fdu's disk, cdrom and log, or a
// removed image's blob. Empty paths are skipped; missing files are not an
// error.
func (m *Manager) RemoveFiles(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}

// CheckDiskSpace verifies the disks directory's filesystem has at least
// sizeGB available.
func (m *Manager) CheckDiskSpace(sizeGB int) error {
	if sizeGB <= 0 {
		return fmt.Errorf("disk size must be > 0, got %d", sizeGB)
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(m.disksDir, &stat); err != nil {
		return fmt.Errorf("failed to get filesystem stats for %s: %w", m.disksDir, err)
	}

	availableGB := (stat.Bavail * uint64(stat.Bsize)) / (1024 * 1024 * 1024)
	if uint64(sizeGB) > availableGB {
		return fmt.Errorf("insufficient disk space: need %dGB, have %dGB available", sizeGB, availableGB)
	}

	return nil
}

// DiskExists reports whether a path already has a regular file.
func (m *Manager) DiskExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	return !info.IsDir(), nil
}
