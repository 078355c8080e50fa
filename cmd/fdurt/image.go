package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbweber/fdurt/internal/storage"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage base images",
	Long: `Manage base OS images in the fdu-images storage pool.

Base images are the blobs FDU working disks are provisioned from; caching
them in the pool avoids re-fetching on every configure.`,
}

func init() {
	imageCmd.AddCommand(imageImportCmd)
	imageCmd.AddCommand(imagePullCmd)
	imageCmd.AddCommand(imageListCmd)
	imageCmd.AddCommand(imageDeleteCmd)
	imageCmd.AddCommand(imageInfoCmd)
}

var imageImportCmd = &cobra.Command{
	Use:   "import <source-path> <name>",
	Short: "Import an image into the fdu-images pool",
	Long: `Import a base OS image from a local file into the fdu-images pool.

The blob is validated by magic bytes before import, and the stored name's
extension is normalized to the detected format.

Example:
  fdurt image import /path/to/cirros-0.6.qcow2 cirros`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourcePath, imageName := args[0], args[1]

		return withStorageManager(true, func(ctx context.Context, mgr *storage.Manager) error {
			exists, err := mgr.ImageExists(ctx, imageName)
			if err != nil {
				return fmt.Errorf("failed to check if image exists: %w", err)
			}
			if exists {
				return fmt.Errorf("image %s already exists", imageName)
			}

			fmt.Printf("Importing image from %s as %s...\n", sourcePath, imageName)
			if err := mgr.ImportImage(ctx, sourcePath, imageName); err != nil {
				return fmt.Errorf("failed to import image: %w", err)
			}

			fmt.Printf("✓ Image %s imported successfully\n", imageName)
			return nil
		})
	},
}

var imagePullChecksum string

var imagePullCmd = &cobra.Command{
	Use:   "pull <url> <name>",
	Short: "Download and import an image over HTTP",
	Long: `Download a base OS image from an HTTP(S) URL and import it into the
fdu-images pool. With --checksum, the download's SHA-256 must match or the
import is aborted.

Example:
  fdurt image pull https://example.org/cirros-0.6.qcow2 cirros --checksum 3d5b...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, imageName := args[0], args[1]

		return withStorageManager(true, func(ctx context.Context, mgr *storage.Manager) error {
			fmt.Printf("Pulling %s as %s...\n", url, imageName)
			if err := mgr.PullImage(ctx, url, imageName, imagePullChecksum); err != nil {
				return fmt.Errorf("failed to pull image: %w", err)
			}

			fmt.Printf("✓ Image %s pulled successfully\n", imageName)
			return nil
		})
	},
}

func init() {
	imagePullCmd.Flags().StringVar(&imagePullChecksum, "checksum", "", "expected SHA-256 of the downloaded blob (hex)")
}

var imageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all images in the fdu-images pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorageManager(true, func(ctx context.Context, mgr *storage.Manager) error {
			images, err := mgr.ListImages(ctx)
			if err != nil {
				return fmt.Errorf("failed to list images: %w", err)
			}

			if len(images) == 0 {
				fmt.Println("No images found in fdu-images pool")
				return nil
			}

			fmt.Printf("%-30s %-10s %10s  %s\n", "NAME", "FORMAT", "SIZE", "PATH")
			fmt.Println(strings.Repeat("-", 100))
			for _, img := range images {
				fmt.Printf("%-30s %-10s %8.1fGB  %s\n", img.Name, img.Format, img.CapacityGB(), img.Path)
			}

			fmt.Printf("\nTotal: %d image(s)\n", len(images))
			return nil
		})
	},
}

var imageDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an image from the fdu-images pool",
	Long: `Delete a base OS image from the fdu-images pool.

Warning: FDUs whose disks were provisioned from this image keep working,
but re-configuring them will fail until the image is registered again.

Example:
  fdurt image delete cirros.qcow2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imageName := args[0]

		return withStorageManager(true, func(ctx context.Context, mgr *storage.Manager) error {
			exists, err := mgr.ImageExists(ctx, imageName)
			if err != nil {
				return fmt.Errorf("failed to check if image exists: %w", err)
			}
			if !exists {
				return fmt.Errorf("image %s not found", imageName)
			}

			if err := mgr.DeleteImage(ctx, imageName, false); err != nil {
				return fmt.Errorf("failed to delete image: %w", err)
			}

			fmt.Printf("✓ Image %s deleted successfully\n", imageName)
			return nil
		})
	},
}

var imageInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show detailed information about an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imageName := args[0]

		return withStorageManager(true, func(ctx context.Context, mgr *storage.Manager) error {
			images, err := mgr.ListImages(ctx)
			if err != nil {
				return fmt.Errorf("failed to list images: %w", err)
			}

			for _, img := range images {
				if img.Name != imageName {
					continue
				}
				fmt.Printf("Image: %s\n", img.Name)
				fmt.Printf("Pool: %s\n", img.Pool)
				fmt.Printf("Format: %s\n", img.Format)
				fmt.Printf("Capacity: %.2f GB (%d bytes)\n", img.CapacityGB(), img.Capacity)
				fmt.Printf("Allocation: %.2f GB (%d bytes)\n", img.AllocationGB(), img.Allocation)
				fmt.Printf("Path: %s\n", img.Path)
				return nil
			}

			return fmt.Errorf("image %s not found", imageName)
		})
	},
}
