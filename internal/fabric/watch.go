package fabric

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	mvccpb "go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

const defaultOpTimeout = 5 * time.Second

// Dispatcher is the subset of the engine's Dispatch method the observer
// loop drives. Defined consumer-side so this package never imports
// internal/engine.
type Dispatcher interface {
	Dispatch(action, uuid string, manifest *v1alpha1.FDU) error
}

// Observe watches the desired-state FDU prefix and dispatches each record's
// action to d, until ctx is cancelled. One malformed record is logged and
// skipped rather than aborting the whole watch.
func (c *Client) Observe(ctx context.Context, d Dispatcher) error {
	prefix := c.desiredFDUPrefix()
	watchChan := c.cli.Watch(ctx, prefix, clientv3.WithPrefix())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case resp, ok := <-watchChan:
			if !ok {
				return nil
			}
			if err := resp.Err(); err != nil {
				logrus.WithError(err).Warn("fabric: watch error, continuing")
				continue
			}
			for _, ev := range resp.Events {
				c.handleEvent(prefix, ev, d)
			}
		}
	}
}

func (c *Client) handleEvent(prefix string, ev *clientv3.Event, d Dispatcher) {
	uuid := strings.TrimPrefix(string(ev.Kv.Key), prefix)
	if uuid == "" {
		return
	}

	if ev.Type == mvccpb.DELETE {
		logrus.WithField("fdu", uuid).Debug("fabric: desired record removed, ignoring")
		return
	}

	var rec fduRecord
	if err := json.Unmarshal(ev.Kv.Value, &rec); err != nil {
		logrus.WithError(err).WithField("fdu", uuid).Warn("fabric: malformed desired record, skipping")
		return
	}
	if rec.UUID == "" {
		rec.UUID = uuid
	}

	var manifest *v1alpha1.FDU
	if rec.Status == "define" {
		manifest = rec.toManifest()
	}

	if err := d.Dispatch(rec.Status, rec.UUID, manifest); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"fdu": rec.UUID, "action": rec.Status}).
			Error("fabric: dispatch failed")
	}
}
