// Command fdurt is the KVM/libvirt runtime plugin: it watches a fabric's
// desired-state keyspace for one node and drives libvirt domains through the
// FDU lifecycle in response.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jbweber/fdurt/api/v1alpha1"
	"github.com/jbweber/fdurt/internal/config"
	"github.com/jbweber/fdurt/internal/disk"
	"github.com/jbweber/fdurt/internal/engine"
	"github.com/jbweber/fdurt/internal/fabric"
	"github.com/jbweber/fdurt/internal/libvirt"
	"github.com/jbweber/fdurt/internal/osbridge"
)

var (
	version = "dev"
	commit  = "unknown"
)

const defaultBaseDir = "/var/lib/fdurt"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(-1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fdurt <fabric-locator> <node-id>",
	Short: "KVM/libvirt FDU lifecycle runtime plugin",
	Long: `fdurt watches a fabric's desired-state keyspace for one node and drives
libvirt domains through the FDU lifecycle (define, configure, run, stop,
pause, resume, clean, undefine) in response.

fabric-locator is a comma-separated list of etcd endpoints; node-id names
this host within the fabric's key namespace.`,
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &config.PluginConfig{
			BaseDir:       defaultBaseDir,
			FabricLocator: args[0],
			NodeID:        args[1],
			PluginUUID:    uuid.New().String(),
			PluginName:    "fdurt",
			PluginVersion: version,
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(testConnCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(poolCmd)
	rootCmd.AddCommand(storageCmd)
}

var configCmd = &cobra.Command{
	Use:   "config <config.yaml>",
	Short: "Run against a YAML configuration file",
	Long: `Run the plugin using a full configuration file instead of the bare
<fabric-locator> <node-id> positional form. Use this when timeouts, the
libvirt URI, or the plugin UUID need to be pinned explicitly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFromFile(args[0])
		if err != nil {
			return err
		}
		return run(cfg)
	},
}

// run wires the hypervisor, disk, fabric, and OS-bridge adapters into a
// LifecycleEngine and blocks watching the fabric's desired-state keyspace
// until the process receives SIGINT/SIGTERM, then tears everything down.
func run(cfg *config.PluginConfig) error {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configureLogging(cfg)
	log := logrus.WithFields(logrus.Fields{
		"node_id":     cfg.NodeID,
		"plugin_uuid": cfg.PluginUUID,
	})

	hv, err := libvirt.ConnectURI(cfg.LibvirtURI, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to libvirt: %w", err)
	}
	defer func() {
		if closeErr := hv.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("failed to close libvirt connection")
		}
	}()

	fabricClient, err := fabric.Dial(cfg)
	if err != nil {
		return fmt.Errorf("failed to dial fabric: %w", err)
	}
	defer func() {
		if closeErr := fabricClient.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("failed to close fabric client")
		}
	}()

	// The node's agent may publish its working path; the plugin roots its
	// tree at {agent_path}/kvm when it does.
	if nodeCfg, err := fabricClient.GetNodeConfiguration(); err == nil {
		if agentPath := nodeCfg["agent_path"]; agentPath != "" {
			cfg.BaseDir = agentPath + "/kvm"
			log.WithField("base_dir", cfg.BaseDir).Info("using agent-published base dir")
		}
	} else {
		log.WithError(err).Warn("could not read node configuration, keeping configured base dir")
	}

	diskMgr, err := disk.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize disk manager: %w", err)
	}

	eng := engine.New(cfg, hv.Libvirt(), diskMgr, fabricClient, osbridge.New())
	eng.SetLogger(log)
	eng.SetReopen(func() (engine.HypervisorClient, error) {
		if err := hv.Redial(); err != nil {
			return nil, err
		}
		return hv.Libvirt(), nil
	})

	pluginState := &v1alpha1.PluginState{
		UUID:    cfg.PluginUUID,
		Name:    cfg.PluginName,
		Version: cfg.PluginVersion,
		PID:     os.Getpid(),
		Status:  "running",
	}
	if err := fabricClient.AddPlugin(pluginState); err != nil {
		log.WithError(err).Warn("failed to register plugin with fabric")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("fabric", cfg.FabricLocator).Info("watching desired-state keyspace")
	err = fabricClient.Observe(ctx, eng)
	if err != nil && ctx.Err() == nil {
		return err
	}

	log.Info("shutdown signal received, tearing down")
	eng.Shutdown()

	pluginState.Status = "stopped"
	if err := fabricClient.AddPlugin(pluginState); err != nil {
		log.WithError(err).Warn("failed to publish stopped plugin state")
	}

	return nil
}

// configureLogging applies the configured level and a full-timestamp text
// formatter to the process-wide logrus logger.
func configureLogging(cfg *config.PluginConfig) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	switch cfg.LogLevel {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

var testConnCmd = &cobra.Command{
	Use:   "test-conn",
	Short: "Test libvirt connection",
	Long:  `Test connectivity to the libvirt daemon and display version information.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Testing libvirt connection...")

		client, err := libvirt.Connect("", 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to libvirt: %w", err)
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close libvirt connection: %v\n", closeErr)
			}
		}()

		fmt.Println("✓ Connected to libvirt daemon")

		if err := client.Ping(); err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}

		// libvirt reports its version as one integer, e.g. 8006000 for 8.6.0.
		version, err := client.Libvirt().ConnectGetLibVersion()
		if err != nil {
			return fmt.Errorf("failed to get libvirt version: %w", err)
		}
		fmt.Printf("✓ Libvirt version: %d.%d.%d\n", version/1000000, (version%1000000)/1000, version%1000)

		hostname, err := client.Libvirt().ConnectGetHostname()
		if err != nil {
			return fmt.Errorf("failed to get hostname: %w", err)
		}
		fmt.Printf("✓ Hypervisor hostname: %s\n", hostname)

		uri, err := client.Libvirt().ConnectGetUri()
		if err != nil {
			return fmt.Errorf("failed to get connection URI: %w", err)
		}
		fmt.Printf("✓ Connection URI: %s\n", uri)

		fmt.Println("\nConnection test successful!")
		return nil
	},
}
