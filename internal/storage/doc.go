// Package storage provides the libvirt storage-pool view over the plugin's
// image and disk directories.
//
// This is the pool-backed track for FDU storage, complementing
// internal/disk's direct-filesystem approach: two dir-type pools at fixed
// directories (DefaultImagesPath, DefaultDisksPath), separate from the
// engine's BaseDir tree that internal/disk writes with qemu-img and dd:
//   - fdu-images: base OS images shared across FDUs
//   - fdu-disks: per-FDU working disks and config-drive volumes
//
// The pools give operators a libvirt-native administrative view (capacity,
// volume listing, import/delete) of their own directories; RefreshPool picks
// up files written into those directories outside libvirt.
//
// Volumes are keyed by FDU UUID, since UUID is the identifier the fabric
// and the lifecycle engine agree on:
//   - Working disk: {uuid}.{format}
//   - Config drive: {uuid}_config
//
// Imports validate the blob by magic bytes (DetectImageFormat) before
// anything reaches a pool: QCOW2 by the QFI\xfb header, raw by the MBR boot
// signature at offset 510. An extension that disagrees with the content is
// normalized to the detected format.
//
// The LibvirtClient interface is defined consumer-side here, as elsewhere in
// this module: Manager asks only for the storage RPCs it calls, and
// *libvirt.Libvirt satisfies it implicitly.
package storage
