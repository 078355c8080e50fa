package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/fdurt/internal/config"
	"github.com/jbweber/fdurt/internal/fabric"
	"github.com/jbweber/fdurt/internal/loader"
)

var (
	applyFabricLocator string
	applyNodeID        string
	applyPluginUUID    string
	applyAction        string
)

var applyCmd = &cobra.Command{
	Use:   "apply <manifest.yaml>",
	Short: "Publish an FDU manifest to the fabric's desired state",
	Long: `Load an FDU manifest from a YAML file and write it into the fabric's
desired-state keyspace for a node's runtime plugin, where the running
plugin's observer picks it up.

The default action is "define"; --action can issue any lifecycle action
(configure, run, stop, pause, resume, clean, undefine) against an FDU the
node already knows.

Example:
  fdurt apply web-1.yaml --fabric 127.0.0.1:2379 --node edge-3 --plugin 4f2c...
  fdurt apply web-1.yaml --fabric 127.0.0.1:2379 --node edge-3 --plugin 4f2c... --action run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if applyFabricLocator == "" || applyNodeID == "" || applyPluginUUID == "" {
			return fmt.Errorf("--fabric, --node, and --plugin are required")
		}

		fdu, err := loader.LoadFromFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to load manifest: %w", err)
		}

		cfg := &config.PluginConfig{
			BaseDir:       ".",
			FabricLocator: applyFabricLocator,
			NodeID:        applyNodeID,
			PluginUUID:    applyPluginUUID,
		}
		cfg.Normalize()

		cli, err := fabric.Dial(cfg)
		if err != nil {
			return fmt.Errorf("failed to dial fabric: %w", err)
		}
		defer cli.Close()

		if err := cli.PublishDesired(fdu, applyAction); err != nil {
			return fmt.Errorf("failed to publish desired state: %w", err)
		}

		fmt.Printf("✓ Published %s for FDU %s to node %s\n", applyAction, fdu.Spec.UUID, applyNodeID)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyFabricLocator, "fabric", "", "comma-separated etcd endpoints")
	applyCmd.Flags().StringVar(&applyNodeID, "node", "", "target node id")
	applyCmd.Flags().StringVar(&applyPluginUUID, "plugin", "", "target runtime plugin UUID")
	applyCmd.Flags().StringVar(&applyAction, "action", "define", "lifecycle action to request")
}
