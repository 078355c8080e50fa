package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jbweber/fdurt/internal/libvirt"
	"github.com/jbweber/fdurt/internal/storage"
)

// withStorageManager dials libvirt, hands a storage.Manager to fn, and
// cleans the connection up afterwards. Shared by every diagnostic
// subcommand that inspects the fdu-images/fdu-disks pools.
func withStorageManager(ensurePools bool, fn func(ctx context.Context, mgr *storage.Manager) error) error {
	ctx := context.Background()

	client, err := libvirt.Connect("", 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to libvirt: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close libvirt connection: %v\n", closeErr)
		}
	}()

	mgr := storage.NewManager(client.Libvirt())
	if ensurePools {
		if err := mgr.EnsureDefaultPools(ctx); err != nil {
			return fmt.Errorf("failed to ensure default pools: %w", err)
		}
	}

	return fn(ctx, mgr)
}
