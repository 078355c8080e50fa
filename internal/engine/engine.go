// Package engine implements the LifecycleEngine: the state machine that
// takes an FDU manifest from DEFINED through CONFIGURED, RUNNING, and PAUSED,
// driving the hypervisor, the filesystem, and the fabric in lockstep.
//
// Each FDU's operations are serialized through its own mailbox (see
// mailbox.go) so concurrent dispatch from the observer never interleaves two
// operations against the same UUID, while unrelated FDUs still progress in
// parallel.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/fdurt/api/v1alpha1"
	"github.com/jbweber/fdurt/internal/config"
	"github.com/jbweber/fdurt/internal/status"
)

// Hooks are optional callbacks invoked at the points the original observer
// design names on_defined/on_configured/on_clean/on_start/on_stop/on_pause/
// on_resume. Any field left nil is simply skipped.
type Hooks struct {
	OnDefined    func(*v1alpha1.FDU)
	OnConfigured func(*v1alpha1.FDU)
	OnClean      func(*v1alpha1.FDU)
	OnStart      func(*v1alpha1.FDU)
	OnStop       func(*v1alpha1.FDU)
	OnPause      func(*v1alpha1.FDU)
	OnResume     func(*v1alpha1.FDU)
}

// Engine is the LifecycleEngine. One Engine serves one node's worth of FDUs.
type Engine struct {
	cfg *config.PluginConfig
	log *logrus.Entry

	hv     HypervisorClient
	disk   diskManager
	fabric fabricClient
	os     osBridge

	// reopen, when set, rebuilds the hypervisor connection after a transport
	// error so the failed RPC can be retried exactly once.
	reopen func() (HypervisorClient, error)

	reg   *registry
	Hooks Hooks

	mu   sync.Mutex // guards fdus
	fdus map[string]*v1alpha1.FDU

	mailboxes *mailboxSet
}

// New constructs an Engine.
func New(cfg *config.PluginConfig, hv HypervisorClient, disk diskManager, fabric fabricClient, os osBridge) *Engine {
	log := logrus.WithFields(logrus.Fields{
		"node_id":     cfg.NodeID,
		"plugin_uuid": cfg.PluginUUID,
	})
	return &Engine{
		cfg:       cfg,
		log:       log,
		hv:        hv,
		disk:      disk,
		fabric:    fabric,
		os:        os,
		reg:       newRegistry(),
		fdus:      make(map[string]*v1alpha1.FDU),
		mailboxes: newMailboxSet(log),
	}
}

// SetLogger replaces the engine's logger; fields already carried by entry
// are kept on every log line the engine emits.
func (e *Engine) SetLogger(entry *logrus.Entry) {
	e.log = entry
	e.mailboxes.log = entry
}

// SetReopen installs the hypervisor reconnect hook. Without it, transport
// errors are retried on the same (possibly dead) connection.
func (e *Engine) SetReopen(f func() (HypervisorClient, error)) {
	e.reopen = f
}

func (e *Engine) getFDU(uuid string) (*v1alpha1.FDU, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fdu, ok := e.fdus[uuid]
	if !ok {
		return nil, &FDUNotExistingError{UUID: uuid}
	}
	return fdu, nil
}

func (e *Engine) putFDU(fdu *v1alpha1.FDU) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fdus[fdu.Spec.UUID] = fdu
}

func (e *Engine) deleteFDU(uuid string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.fdus, uuid)
}

func (e *Engine) listFDUs() []*v1alpha1.FDU {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*v1alpha1.FDU, 0, len(e.fdus))
	for _, fdu := range e.fdus {
		out = append(out, fdu)
	}
	return out
}

// DefineFDU resolves image/flavor references from a manifest, registers the
// FDU in state DEFINED, and publishes it.
func (e *Engine) DefineFDU(manifest *v1alpha1.FDU) error {
	return e.mailboxes.run(manifest.Spec.UUID, func() error {
		return e.defineFDULocked(manifest)
	})
}

func (e *Engine) defineFDULocked(manifest *v1alpha1.FDU) error {
	fdu := manifest.DeepCopy()
	log := e.log.WithField("fdu", fdu.Spec.UUID)
	log.Info("define_fdu")

	// On resolution failure an error record goes to the fabric but the FDU
	// is NOT added to the local table.
	imageUUID, err := e.resolveImage(fdu)
	if err != nil {
		log.WithError(err).Warn("define_fdu: image resolution failed")
		status.TransitionToFailed(fdu, "ImageResolutionFailed", err.Error())
		e.publish(fdu)
		return err
	}

	flavorUUID, err := e.resolveFlavorRef(fdu)
	if err != nil {
		log.WithError(err).Warn("define_fdu: flavor resolution failed")
		status.TransitionToFailed(fdu, "FlavorResolutionFailed", err.Error())
		e.publish(fdu)
		return err
	}

	fdu.Status.ImageID = imageUUID
	fdu.Status.FlavorID = flavorUUID
	fdu.Spec.BaseImage = imageUUID
	fdu.Spec.FlavorID = flavorUUID
	fdu.Spec.CPU = 0
	fdu.Spec.MemoryMB = 0
	fdu.Spec.DiskSizeGB = 0

	fdu.SetState(v1alpha1.FDUStateDefined)
	fdu.SetStatusLabel(v1alpha1.StatusLabelDefined)
	fdu.UpdateObservedGeneration()

	if e.Hooks.OnDefined != nil {
		e.Hooks.OnDefined(fdu)
	}

	e.putFDU(fdu)
	log.WithFields(logrus.Fields{"image": imageUUID, "flavor": flavorUUID}).Info("define_fdu: defined")
	return e.publish(fdu)
}

// resolveImage binds fdu.Spec.BaseImage to a registered image UUID,
// synthesizing a new Image record when BaseImage is a URL rather than an
// existing UUID.
func (e *Engine) resolveImage(fdu *v1alpha1.FDU) (string, error) {
	if img, ok := e.reg.getImage(fdu.Spec.BaseImage); ok {
		return img.Spec.UUID, nil
	}

	ext := fileExtension(fdu.Spec.BaseImage)
	img := &v1alpha1.Image{
		TypeMeta:   v1alpha1.TypeMeta{Kind: "Image", APIVersion: v1alpha1.GroupName + "/" + v1alpha1.Version},
		ObjectMeta: v1alpha1.ObjectMeta{Name: fdu.Name + "_img"},
		Spec: v1alpha1.ImageSpec{
			UUID:         fdu.Spec.UUID,
			BaseImageURL: fdu.Spec.BaseImage,
			Format:       ext,
			Type:         "kvm",
		},
	}
	if err := e.AddImage(img); err != nil {
		return "", err
	}
	return img.Spec.UUID, nil
}

// resolveFlavorRef binds fdu.Spec.FlavorID to a registered flavor UUID,
// synthesizing one from the manifest's inline CPU/MemoryMB/DiskSizeGB when
// FlavorID is blank. Returns an error if FlavorID was supplied but unknown.
func (e *Engine) resolveFlavorRef(fdu *v1alpha1.FDU) (string, error) {
	if fdu.Spec.FlavorID != "" {
		f, ok := e.reg.getFlavor(fdu.Spec.FlavorID)
		if !ok {
			return "", fmt.Errorf("flavor %s not found", fdu.Spec.FlavorID)
		}
		return f.Spec.UUID, nil
	}

	f := &v1alpha1.Flavor{
		TypeMeta:   v1alpha1.TypeMeta{Kind: "Flavor", APIVersion: v1alpha1.GroupName + "/" + v1alpha1.Version},
		ObjectMeta: v1alpha1.ObjectMeta{Name: fdu.Name + "_flavor"},
		Spec: v1alpha1.FlavorSpec{
			UUID:       fdu.Spec.UUID,
			CPU:        fdu.Spec.CPU,
			MemoryMB:   fdu.Spec.MemoryMB,
			DiskSizeGB: fdu.Spec.DiskSizeGB,
			Type:       "kvm",
		},
	}
	e.AddFlavor(f)
	return f.Spec.UUID, nil
}

// UndefineFDU removes a DEFINED FDU from the local table and the fabric.
func (e *Engine) UndefineFDU(uuid string) error {
	return e.mailboxes.run(uuid, func() error {
		fdu, err := e.getFDU(uuid)
		if err != nil {
			return err
		}
		if fdu.GetState() != v1alpha1.FDUStateDefined {
			return &status.StateTransitionNotAllowedError{From: fdu.GetState(), To: ""}
		}

		e.deleteFDU(uuid)
		e.log.WithField("fdu", uuid).Info("undefine_fdu: removed")
		return e.fabric.RemoveFDU(uuid)
	})
}

// CleanFDU undefines the domain at the hypervisor (if present), removes the
// disk, cdrom, and log file, and returns the FDU to DEFINED.
func (e *Engine) CleanFDU(uuid string) error {
	return e.mailboxes.run(uuid, func() error {
		fdu, err := e.getFDU(uuid)
		if err != nil {
			return err
		}
		if fdu.GetState() != v1alpha1.FDUStateConfigured {
			return &status.StateTransitionNotAllowedError{From: fdu.GetState(), To: v1alpha1.FDUStateDefined}
		}
		log := e.log.WithField("fdu", uuid)
		log.Info("clean_fdu")

		if dom, lookupErr := e.lookupDomain(fdu.Spec.UUID); lookupErr == nil {
			e.clearDomainMetadata(dom, log)
			if err := e.hv.DomainUndefineFlags(dom, 0); err != nil {
				log.WithError(err).Warn("clean_fdu: failed to undefine domain")
			}
		} else {
			log.WithError(lookupErr).Warn("clean_fdu: domain not found at hypervisor")
		}

		logPath := e.disk.LogPath(fdu.Spec.UUID)
		if err := e.disk.RemoveFiles(fdu.Status.DiskPath, fdu.Status.CdromPath, logPath); err != nil {
			return err
		}

		fdu.Status.DiskPath = ""
		fdu.Status.CdromPath = ""
		fdu.Status.DomainXML = ""
		fdu.SetState(v1alpha1.FDUStateDefined)
		fdu.SetStatusLabel(v1alpha1.StatusLabelDefined)
		fdu.UpdateObservedGeneration()

		if e.Hooks.OnClean != nil {
			e.Hooks.OnClean(fdu)
		}

		return e.publish(fdu)
	})
}

// RunFDU starts a CONFIGURED FDU's domain and waits for it to report RUNNING.
func (e *Engine) RunFDU(uuid string) error {
	return e.mailboxes.run(uuid, func() error {
		fdu, err := e.getFDU(uuid)
		if err != nil {
			return err
		}
		if fdu.GetState() != v1alpha1.FDUStateConfigured {
			return &status.StateTransitionNotAllowedError{From: fdu.GetState(), To: v1alpha1.FDUStateRunning}
		}
		log := e.log.WithField("fdu", uuid)
		log.Info("run_fdu")

		fdu.SetStatusLabel(v1alpha1.StatusLabelStarting)
		if err := e.publish(fdu); err != nil {
			log.WithError(err).Warn("run_fdu: failed to publish starting status")
		}

		dom, err := e.lookupDomain(fdu.Spec.UUID)
		if err != nil {
			return &ResolutionFailureError{Kind: "domain", Ref: fdu.Spec.UUID, Err: err}
		}
		if err := e.hv.DomainCreate(dom); err != nil {
			return &HypervisorTransportError{Op: "DomainCreate", Err: err}
		}

		if err := e.waitForState(dom, domainStateRunning, e.cfg.DomainReadyTimeout(), 50*time.Millisecond); err != nil {
			return &HypervisorTransportError{Op: "DomainCreate", Err: fmt.Errorf("domain did not reach running state: %w", err)}
		}

		if err := status.TransitionToRunning(fdu); err != nil {
			return err
		}
		if e.Hooks.OnStart != nil {
			e.Hooks.OnStart(fdu)
		}
		log.Info("run_fdu: running")
		return e.publish(fdu)
	})
}

// StopFDU shuts a RUNNING FDU's domain down, falling back to a hard destroy
// if it doesn't settle to SHUTOFF within the configured poll budget.
func (e *Engine) StopFDU(uuid string) error {
	return e.mailboxes.run(uuid, func() error {
		fdu, err := e.getFDU(uuid)
		if err != nil {
			return err
		}
		if fdu.GetState() != v1alpha1.FDUStateRunning {
			return &status.StateTransitionNotAllowedError{From: fdu.GetState(), To: v1alpha1.FDUStateConfigured}
		}
		log := e.log.WithField("fdu", uuid)
		log.Info("stop_fdu")

		dom, err := e.lookupDomain(fdu.Spec.UUID)
		if err != nil {
			return &ResolutionFailureError{Kind: "domain", Ref: fdu.Spec.UUID, Err: err}
		}

		if err := e.hv.DomainShutdown(dom); err != nil {
			log.WithError(err).Warn("stop_fdu: graceful shutdown request failed")
		}

		settled := e.pollWhileNot(dom, domainStateShutoff, e.cfg.ShutdownPollAttempts, e.cfg.ShutdownPollInterval())
		if !settled {
			log.Warn("stop_fdu: shutdown poll budget exhausted, forcing destroy")
			if err := e.hv.DomainDestroy(dom); err != nil {
				return &HypervisorTransportError{Op: "DomainDestroy", Err: err}
			}
		}

		if err := status.TransitionToStopped(fdu); err != nil {
			return err
		}
		if e.Hooks.OnStop != nil {
			e.Hooks.OnStop(fdu)
		}
		return e.publish(fdu)
	})
}

// PauseFDU suspends a RUNNING FDU's domain.
func (e *Engine) PauseFDU(uuid string) error {
	return e.mailboxes.run(uuid, func() error {
		fdu, err := e.getFDU(uuid)
		if err != nil {
			return err
		}
		if fdu.GetState() != v1alpha1.FDUStateRunning {
			return &status.StateTransitionNotAllowedError{From: fdu.GetState(), To: v1alpha1.FDUStatePaused}
		}
		e.log.WithField("fdu", uuid).Info("pause_fdu")

		dom, err := e.lookupDomain(fdu.Spec.UUID)
		if err != nil {
			return &ResolutionFailureError{Kind: "domain", Ref: fdu.Spec.UUID, Err: err}
		}
		if err := e.hv.DomainSuspend(dom); err != nil {
			return &HypervisorTransportError{Op: "DomainSuspend", Err: err}
		}

		if err := status.TransitionToPaused(fdu); err != nil {
			return err
		}
		if e.Hooks.OnPause != nil {
			e.Hooks.OnPause(fdu)
		}
		return e.publish(fdu)
	})
}

// ResumeFDU resumes a PAUSED FDU's domain back to RUNNING.
func (e *Engine) ResumeFDU(uuid string) error {
	return e.mailboxes.run(uuid, func() error {
		fdu, err := e.getFDU(uuid)
		if err != nil {
			return err
		}
		if fdu.GetState() != v1alpha1.FDUStatePaused {
			return &status.StateTransitionNotAllowedError{From: fdu.GetState(), To: v1alpha1.FDUStateRunning}
		}
		e.log.WithField("fdu", uuid).Info("resume_fdu")

		dom, err := e.lookupDomain(fdu.Spec.UUID)
		if err != nil {
			return &ResolutionFailureError{Kind: "domain", Ref: fdu.Spec.UUID, Err: err}
		}
		if err := e.hv.DomainResume(dom); err != nil {
			return &HypervisorTransportError{Op: "DomainResume", Err: err}
		}

		if err := status.TransitionToRunning(fdu); err != nil {
			return err
		}
		if e.Hooks.OnResume != nil {
			e.Hooks.OnResume(fdu)
		}
		return e.publish(fdu)
	})
}

// Shutdown force-terminates every known FDU through the lifecycle and
// unregisters every image and flavor. Individual failures are logged and
// skipped so one stuck FDU cannot block teardown of the rest.
func (e *Engine) Shutdown() {
	for _, fdu := range e.listFDUs() {
		uuid := fdu.Spec.UUID
		log := e.log.WithField("fdu", uuid)

		if fdu.GetState() == v1alpha1.FDUStatePaused {
			if err := e.ResumeFDU(uuid); err != nil {
				log.WithError(err).Warn("shutdown: resume failed")
			}
		}
		if fdu.GetState() == v1alpha1.FDUStateRunning {
			if err := e.StopFDU(uuid); err != nil {
				log.WithError(err).Warn("shutdown: stop failed")
			}
		}
		if fdu.GetState() == v1alpha1.FDUStateConfigured {
			if err := e.CleanFDU(uuid); err != nil {
				log.WithError(err).Warn("shutdown: clean failed")
			}
		}
		if fdu.GetState() == v1alpha1.FDUStateDefined {
			if err := e.UndefineFDU(uuid); err != nil {
				log.WithError(err).Warn("shutdown: undefine failed")
			}
		}
	}

	for _, uuid := range e.reg.imageUUIDs() {
		if err := e.RemoveImage(uuid); err != nil {
			e.log.WithError(err).WithField("image", uuid).Warn("shutdown: image removal failed")
		}
	}
	for _, uuid := range e.reg.flavorUUIDs() {
		e.RemoveFlavor(uuid)
	}
}

func (e *Engine) publish(fdu *v1alpha1.FDU) error {
	if e.fabric == nil {
		return nil
	}
	return e.fabric.PublishFDU(fdu)
}

func fileExtension(ref string) string {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '.' {
			return ref[i+1:]
		}
		if ref[i] == '/' {
			break
		}
	}
	return ""
}
