package fabric

import (
	"context"
	"encoding/json"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/jbweber/fdurt/internal/config"
)

// Client is the etcd-backed fabric adapter. One Client serves one node's
// worth of plugin state, scoped by NodeID and PluginUUID into its key paths.
type Client struct {
	cli        *clientv3.Client
	nodeID     string
	pluginUUID string
}

// Dial connects to the etcd cluster named by the plugin configuration.
func Dial(cfg *config.PluginConfig) (*Client, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.EtcdEndpoints,
		DialTimeout: cfg.EtcdDialTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dial etcd at %v: %w", cfg.EtcdEndpoints, err)
	}
	return &Client{cli: cli, nodeID: cfg.NodeID, pluginUUID: cfg.PluginUUID}, nil
}

// Close releases the underlying etcd client.
func (c *Client) Close() error {
	return c.cli.Close()
}

func (c *Client) desiredFDUPrefix() string {
	return fmt.Sprintf("desired/node/%s/runtime/%s/fdu/", c.nodeID, c.pluginUUID)
}

func (c *Client) desiredFDUKey(uuid string) string {
	return c.desiredFDUPrefix() + uuid
}

func (c *Client) actualFDUKey(uuid string) string {
	return fmt.Sprintf("actual/node/%s/runtime/%s/fdu/%s", c.nodeID, c.pluginUUID, uuid)
}

func (c *Client) actualImageKey(uuid string) string {
	return fmt.Sprintf("actual/node/%s/runtime/%s/image/%s", c.nodeID, c.pluginUUID, uuid)
}

func (c *Client) actualFlavorKey(uuid string) string {
	return fmt.Sprintf("actual/node/%s/runtime/%s/flavor/%s", c.nodeID, c.pluginUUID, uuid)
}

func (c *Client) pluginKey() string {
	return fmt.Sprintf("actual/node/%s/plugin/%s", c.nodeID, c.pluginUUID)
}

func (c *Client) networkKey(networkUUID string) string {
	return fmt.Sprintf("desired/node/%s/network/%s", c.nodeID, networkUUID)
}

func (c *Client) configurationKey() string {
	return fmt.Sprintf("desired/node/%s/configuration", c.nodeID)
}

func put(ctx context.Context, cli *clientv3.Client, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if _, err := cli.Put(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func get(ctx context.Context, cli *clientv3.Client, key string, v interface{}) (bool, error) {
	resp, err := cli.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if len(resp.Kvs) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(resp.Kvs[0].Value, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func del(ctx context.Context, cli *clientv3.Client, key string) error {
	if _, err := cli.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
