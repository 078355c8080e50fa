package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Image format signatures. QCOW2 files open with the "QFI\xfb" magic;
// bootable raw disks carry the 0x55aa MBR signature at the end of the first
// 512-byte sector (GPT disks too, via their protective MBR).
var (
	qcow2Magic   = []byte{0x51, 0x46, 0x49, 0xfb}
	mbrSignature = []byte{0x55, 0xaa}
)

// DetectImageFormat classifies a disk image by content, not extension:
// qcow2 by header magic, raw by boot-sector signature. Anything else is
// rejected — an image that is neither is not a bootable OS image and would
// only fail later, inside the domain.
func DetectImageFormat(filePath string) (VolumeFormat, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return "", fmt.Errorf("file too small to be valid image (< 4 bytes): %w", err)
	}
	if bytes.Equal(magic, qcow2Magic) {
		return VolumeFormatQCOW2, nil
	}

	if _, err := f.Seek(510, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to seek to boot sector signature: %w", err)
	}
	sig := make([]byte, 2)
	if _, err := io.ReadFull(f, sig); err != nil {
		return "", fmt.Errorf("file too small for boot sector (< 512 bytes): %w", err)
	}
	if bytes.Equal(sig, mbrSignature) {
		return VolumeFormatRaw, nil
	}

	return "", fmt.Errorf("unsupported or invalid image: not qcow2 and missing boot sector signature (0x55aa at offset 510)")
}
