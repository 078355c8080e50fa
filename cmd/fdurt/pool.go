package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbweber/fdurt/internal/storage"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Manage storage pools",
	Long: `Manage the libvirt storage pools backing FDU disks and images.

The plugin uses two default pools: fdu-images (base OS images) and
fdu-disks (FDU working disks and config drives).`,
}

func init() {
	poolCmd.AddCommand(poolListCmd)
	poolCmd.AddCommand(poolInfoCmd)
	poolCmd.AddCommand(poolRefreshCmd)
	poolCmd.AddCommand(poolAddCmd)
	poolCmd.AddCommand(poolDeleteCmd)

	poolDeleteCmd.Flags().Bool("force", false, "Force deletion of pool with volumes")
}

// markDefault suffixes the plugin's own pools in listings.
func markDefault(name string) string {
	if name == storage.DefaultImagesPool || name == storage.DefaultDisksPool {
		return name + " *"
	}
	return name
}

var poolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all storage pools",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorageManager(false, func(ctx context.Context, mgr *storage.Manager) error {
			pools, err := mgr.ListPools(ctx)
			if err != nil {
				return fmt.Errorf("failed to list pools: %w", err)
			}

			if len(pools) == 0 {
				fmt.Println("No storage pools found")
				return nil
			}

			fmt.Printf("%-20s %-10s %-10s %12s %12s %12s\n",
				"NAME", "TYPE", "STATE", "CAPACITY", "ALLOCATED", "AVAILABLE")
			fmt.Println(strings.Repeat("-", 88))

			for _, pool := range pools {
				fmt.Printf("%-20s %-10s %-10s %10.1fGB %10.1fGB %10.1fGB\n",
					markDefault(pool.Name),
					pool.Type,
					pool.State,
					pool.CapacityGB(),
					pool.AllocationGB(),
					pool.AvailableGB(),
				)
			}

			fmt.Printf("\nTotal: %d pool(s)\n", len(pools))
			fmt.Println("* Default pools")
			return nil
		})
	},
}

var poolInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show detailed information about a pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		poolName := args[0]

		return withStorageManager(false, func(ctx context.Context, mgr *storage.Manager) error {
			poolInfo, err := mgr.GetPoolInfo(ctx, poolName)
			if err != nil {
				return fmt.Errorf("failed to get pool info: %w", err)
			}

			volumes, err := mgr.ListVolumes(ctx, poolName)
			if err != nil {
				return fmt.Errorf("failed to list volumes: %w", err)
			}

			fmt.Printf("Pool: %s\n", poolInfo.Name)
			fmt.Printf("Type: %s\n", poolInfo.Type)
			fmt.Printf("State: %s\n", poolInfo.State)
			if poolInfo.Path != "" {
				fmt.Printf("Path: %s\n", poolInfo.Path)
			}
			fmt.Printf("UUID: %s\n", poolInfo.UUID)
			fmt.Printf("Capacity: %.2f GB (%d bytes)\n", poolInfo.CapacityGB(), poolInfo.Capacity)
			fmt.Printf("Allocated: %.2f GB (%d bytes)\n", poolInfo.AllocationGB(), poolInfo.Allocation)
			fmt.Printf("Available: %.2f GB (%d bytes)\n", poolInfo.AvailableGB(), poolInfo.Available)

			usagePercent := 0.0
			if poolInfo.Capacity > 0 {
				usagePercent = (float64(poolInfo.Allocation) / float64(poolInfo.Capacity)) * 100
			}
			fmt.Printf("Usage: %.1f%%\n", usagePercent)
			fmt.Printf("Volumes: %d\n", len(volumes))

			return nil
		})
	},
}

var poolRefreshCmd = &cobra.Command{
	Use:   "refresh <name>",
	Short: "Refresh a storage pool",
	Long: `Rescan a pool's backing directory to pick up external changes.

The engine writes working disks with qemu-img and dd directly; refreshing
the pool makes those files visible as volumes.

Example:
  fdurt pool refresh fdu-disks`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		poolName := args[0]

		return withStorageManager(false, func(ctx context.Context, mgr *storage.Manager) error {
			if err := mgr.RefreshPool(ctx, poolName); err != nil {
				return fmt.Errorf("failed to refresh pool: %w", err)
			}

			fmt.Printf("✓ Pool %s refreshed successfully\n", poolName)
			return nil
		})
	},
}

var poolAddCmd = &cobra.Command{
	Use:   "add <name> <type> <path>",
	Short: "Create a new storage pool",
	Long: `Create a storage pool with the given name, type, and path. Only 'dir'
(directory-based) pools are supported.

The pool is created, started, set to autostart, and owned by the host's
qemu user.

Example:
  fdurt pool add scratch dir /var/lib/libvirt/images/scratch`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		poolName, poolTypeStr, poolPath := args[0], args[1], args[2]

		poolType := storage.PoolType(poolTypeStr)
		if poolType != storage.PoolTypeDir {
			return fmt.Errorf("unsupported pool type: %s (only 'dir' is supported)", poolTypeStr)
		}

		return withStorageManager(false, func(ctx context.Context, mgr *storage.Manager) error {
			fmt.Printf("Creating pool %s (type: %s, path: %s)...\n", poolName, poolType, poolPath)

			if err := mgr.CreatePool(ctx, poolName, poolType, poolPath); err != nil {
				return fmt.Errorf("failed to create pool: %w", err)
			}

			fmt.Printf("✓ Pool %s created successfully\n", poolName)
			return nil
		})
	},
}

var poolDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a storage pool",
	Long: `Delete a storage pool by name. The default fdu-images and fdu-disks
pools cannot be deleted.

Without --force, only empty pools can be deleted. With --force, every
volume in the pool is permanently deleted first.

Example:
  fdurt pool delete scratch --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		poolName := args[0]
		force, _ := cmd.Flags().GetBool("force")

		return withStorageManager(false, func(ctx context.Context, mgr *storage.Manager) error {
			volumes, err := mgr.ListVolumes(ctx, poolName)
			if err != nil {
				return fmt.Errorf("failed to check pool volumes: %w", err)
			}

			if len(volumes) > 0 {
				if !force {
					return fmt.Errorf("pool %s contains %d volume(s). Use --force to delete", poolName, len(volumes))
				}
				fmt.Printf("Warning: Deleting pool %s with %d volume(s)...\n", poolName, len(volumes))
			} else {
				fmt.Printf("Deleting pool %s...\n", poolName)
			}

			if err := mgr.DeletePool(ctx, poolName, force); err != nil {
				return fmt.Errorf("failed to delete pool: %w", err)
			}

			fmt.Printf("✓ Pool %s deleted successfully\n", poolName)
			return nil
		})
	},
}
