package engine

import (
	"fmt"
	"time"

	"github.com/digitalocean/go-libvirt"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jbweber/fdurt/internal/metadata"
)

// Numeric domain state codes returned by DomainGetState, per the libvirt
// virDomainState enum.
const (
	domainStateRunning = 1
	domainStateShutoff = 5
)

// lookupDomain resolves an FDU UUID to its libvirt domain handle.
func (e *Engine) lookupDomain(fduUUID string) (libvirt.Domain, error) {
	parsed, err := uuid.Parse(fduUUID)
	if err != nil {
		return libvirt.Domain{}, fmt.Errorf("invalid FDU uuid %q: %w", fduUUID, err)
	}

	var lv libvirt.UUID
	copy(lv[:], parsed[:])

	dom, err := e.hv.DomainLookupByUUID(lv)
	if err != nil {
		return libvirt.Domain{}, &HypervisorTransportError{Op: "DomainLookupByUUID", Err: err}
	}
	return dom, nil
}

// clearDomainMetadata removes the FDU record stashed on the domain before it
// is undefined. Missing metadata is normal for domains that predate the
// metadata cache, so failures only warn.
func (e *Engine) clearDomainMetadata(dom libvirt.Domain, log *logrus.Entry) {
	if !metadata.Exists(e.hv, dom) {
		return
	}
	if err := metadata.Delete(e.hv, dom); err != nil {
		log.WithError(err).Warn("failed to clear domain metadata")
	}
}

// waitForState polls the domain's state every interval until it matches
// want or timeout elapses.
func (e *Engine) waitForState(dom libvirt.Domain, want int32, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		state, _, err := e.hv.DomainGetState(dom, 0)
		if err != nil {
			return &HypervisorTransportError{Op: "DomainGetState", Err: err}
		}
		if state == want {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s waiting for state %d, last observed %d", timeout, want, state)
		}
		time.Sleep(interval)
	}
}

// pollWhileNot polls the domain's state up to attempts times, sleeping
// interval between each, returning true as soon as the domain reports
// notState. Returns false if the budget is exhausted first.
func (e *Engine) pollWhileNot(dom libvirt.Domain, notState int32, attempts int, interval time.Duration) bool {
	for i := 0; i < attempts; i++ {
		state, _, err := e.hv.DomainGetState(dom, 0)
		if err == nil && state == notState {
			return true
		}
		time.Sleep(interval)
	}
	state, _, err := e.hv.DomainGetState(dom, 0)
	return err == nil && state == notState
}
