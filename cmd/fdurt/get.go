package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/fdurt/internal/config"
	"github.com/jbweber/fdurt/internal/fabric"
	"github.com/jbweber/fdurt/internal/output"
)

var (
	getFabricLocator string
	getNodeID        string
	getPluginUUID    string
	getOutputFormat  string
	getNoHeaders     bool
)

var getCmd = &cobra.Command{
	Use:   "get <fdu-uuid>",
	Short: "Get the actual state of an FDU from the fabric",
	Long: `Fetch the actual-state record a running plugin last published for an
FDU and print it.

Output formats:
  -o table  Human-readable table (default)
  -o yaml   Full YAML resource definition
  -o json   Full JSON resource definition`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fduUUID := args[0]

		if err := output.ValidateFormat(getOutputFormat); err != nil {
			return err
		}
		if getFabricLocator == "" || getNodeID == "" || getPluginUUID == "" {
			return fmt.Errorf("--fabric, --node, and --plugin are required")
		}

		cfg := &config.PluginConfig{
			BaseDir:       ".",
			FabricLocator: getFabricLocator,
			NodeID:        getNodeID,
			PluginUUID:    getPluginUUID,
		}
		cfg.Normalize()

		cli, err := fabric.Dial(cfg)
		if err != nil {
			return fmt.Errorf("failed to dial fabric: %w", err)
		}
		defer cli.Close()

		fdu, err := cli.GetFDU(fduUUID)
		if err != nil {
			return fmt.Errorf("failed to get FDU: %w", err)
		}

		formatter, err := output.NewFormatter(output.Options{
			Format:    output.Format(getOutputFormat),
			NoHeaders: getNoHeaders,
		})
		if err != nil {
			return err
		}

		result, err := formatter.FormatFDU(fdu)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		fmt.Print(result)
		return nil
	},
}

func init() {
	getCmd.Flags().StringVar(&getFabricLocator, "fabric", "", "comma-separated etcd endpoints")
	getCmd.Flags().StringVar(&getNodeID, "node", "", "node id the FDU belongs to")
	getCmd.Flags().StringVar(&getPluginUUID, "plugin", "", "runtime plugin UUID the FDU belongs to")
	getCmd.Flags().StringVarP(&getOutputFormat, "output", "o", "table", "output format: table, yaml, json")
	getCmd.Flags().BoolVar(&getNoHeaders, "no-headers", false, "omit table headers")
}
