package engine

import (
	"testing"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

func TestDispatch_Define(t *testing.T) {
	te := newTestEngine()
	te.RegisterImage(&v1alpha1.Image{Spec: v1alpha1.ImageSpec{UUID: "img-1", Format: "qcow2"}})
	manifest := v1alpha1.NewFDU(testFDUUUID, "web-1")
	manifest.Spec.BaseImage = "img-1"

	if err := te.Dispatch("define", testFDUUUID, manifest); err != nil {
		t.Fatalf("Dispatch(define) error = %v", err)
	}
	if _, err := te.getFDU(testFDUUUID); err != nil {
		t.Fatalf("getFDU() error = %v", err)
	}
}

func TestDispatch_DefineMissingManifestIsNoop(t *testing.T) {
	te := newTestEngine()
	if err := te.Dispatch("define", testFDUUUID, nil); err != nil {
		t.Fatalf("Dispatch(define, nil manifest) error = %v, want nil", err)
	}
}

func TestDispatch_FullLifecycle(t *testing.T) {
	te := newTestEngine()
	te.RegisterImage(&v1alpha1.Image{
		Spec:   v1alpha1.ImageSpec{UUID: "img-1", Format: "qcow2"},
		Status: v1alpha1.ImageStatus{LocalPath: "/images/img-1.qcow2"},
	})
	te.RegisterFlavor(&v1alpha1.Flavor{Spec: v1alpha1.FlavorSpec{UUID: "flavor-1", CPU: 1, MemoryMB: 512, DiskSizeGB: 5}})

	manifest := v1alpha1.NewFDU(testFDUUUID, "web-1")
	manifest.Spec.BaseImage = "img-1"
	manifest.Spec.FlavorID = "flavor-1"

	steps := []string{"define", "configure", "run"}
	for _, action := range steps {
		if err := te.Dispatch(action, testFDUUUID, manifest); err != nil {
			t.Fatalf("Dispatch(%s) error = %v", action, err)
		}
		if action == "configure" {
			te.hv.defineDomain(testFDUUUID, domainStateShutoff)
		}
	}

	fdu, err := te.getFDU(testFDUUUID)
	if err != nil {
		t.Fatalf("getFDU() error = %v", err)
	}
	if fdu.GetState() != v1alpha1.FDUStateRunning {
		t.Errorf("state = %s, want RUNNING", fdu.GetState())
	}

	if err := te.Dispatch("pause", testFDUUUID, nil); err != nil {
		t.Fatalf("Dispatch(pause) error = %v", err)
	}
	if err := te.Dispatch("resume", testFDUUUID, nil); err != nil {
		t.Fatalf("Dispatch(resume) error = %v", err)
	}
	te.hv.stateAfterShutdown = domainStateShutoff
	if err := te.Dispatch("stop", testFDUUUID, nil); err != nil {
		t.Fatalf("Dispatch(stop) error = %v", err)
	}
	if err := te.Dispatch("clean", testFDUUUID, nil); err != nil {
		t.Fatalf("Dispatch(clean) error = %v", err)
	}
	if err := te.Dispatch("undefine", testFDUUUID, nil); err != nil {
		t.Fatalf("Dispatch(undefine) error = %v", err)
	}
}

func TestDispatch_UnknownActionIsNoop(t *testing.T) {
	te := newTestEngine()
	if err := te.Dispatch("levitate", testFDUUUID, nil); err != nil {
		t.Fatalf("Dispatch(unknown) error = %v, want nil", err)
	}
}
