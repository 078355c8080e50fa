package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbweber/fdurt/internal/storage"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Manage storage",
	Long: `View storage pools and their usage.

Provides an overview of every pool on the connection, with the plugin's
own fdu-images and fdu-disks pools marked.`,
}

func init() {
	storageCmd.AddCommand(storageStatusCmd)
}

var storageStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage status overview",
	Long: `Display an overview of all storage pools with capacity and usage
information: a summary across pools, then per-pool volume counts and usage.`,
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

			var totalCapacity, totalAllocation, totalAvailable uint64
			var totalVolumes, runningPools, inactivePools int
			volumeCounts := make(map[string]int, len(pools))

			for _, pool := range pools {
				totalCapacity += pool.Capacity
				totalAllocation += pool.Allocation
				totalAvailable += pool.Available

				if pool.State == "running" {
					runningPools++
				} else {
					inactivePools++
				}

				if volumes, err := mgr.ListVolumes(ctx, pool.Name); err == nil {
					volumeCounts[pool.Name] = len(volumes)
					totalVolumes += len(volumes)
				}
			}

			fmt.Println("Storage Overview")
			fmt.Println(strings.Repeat("=", 88))
			fmt.Printf("Pools:      %d total (%d running, %d inactive)\n", len(pools), runningPools, inactivePools)
			fmt.Printf("Volumes:    %d total\n", totalVolumes)
			fmt.Printf("Capacity:   %.2f GB\n", float64(totalCapacity)/(1024*1024*1024))
			fmt.Printf("Allocated:  %.2f GB\n", float64(totalAllocation)/(1024*1024*1024))
			fmt.Printf("Available:  %.2f GB\n", float64(totalAvailable)/(1024*1024*1024))

			totalUsagePercent := 0.0
			if totalCapacity > 0 {
				totalUsagePercent = (float64(totalAllocation) / float64(totalCapacity)) * 100
			}
			fmt.Printf("Usage:      %.1f%%\n", totalUsagePercent)

			fmt.Println()
			fmt.Println("Pool Details")
			fmt.Println(strings.Repeat("=", 88))
			fmt.Printf("%-20s %-10s %8s %12s %12s %12s %8s\n",
				"NAME", "STATE", "VOLUMES", "CAPACITY", "ALLOCATED", "AVAILABLE", "USAGE")
			fmt.Println(strings.Repeat("-", 88))

			for _, pool := range pools {
				usagePercent := 0.0
				if pool.Capacity > 0 {
					usagePercent = (float64(pool.Allocation) / float64(pool.Capacity)) * 100
				}

				stateIndicator := "○"
				if pool.State == "running" {
					stateIndicator = "●"
				}

				fmt.Printf("%-20s %-10s %8d %10.1fGB %10.1fGB %10.1fGB %7.1f%%\n",
					markDefault(pool.Name),
					fmt.Sprintf("%s %s", stateIndicator, pool.State),
					volumeCounts[pool.Name],
					pool.CapacityGB(),
					pool.AllocationGB(),
					pool.AvailableGB(),
					usagePercent,
				)
			}

			fmt.Println()
			fmt.Println("● running  ○ inactive  * default pool")
			return nil
		})
	},
}
