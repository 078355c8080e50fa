package engine

import (
	"fmt"
	"sync"

	"github.com/digitalocean/go-libvirt"
	"github.com/google/uuid"

	"github.com/jbweber/fdurt/api/v1alpha1"
	"github.com/jbweber/fdurt/internal/osbridge"
)

// fakeHypervisor is an in-memory stand-in for the libvirt RPC surface the
// engine drives. Domains are keyed by UUID string.
type fakeHypervisor struct {
	mu      sync.Mutex
	domains map[string]*fakeDomain

	defineErr   error
	createErr   error
	lookupErr   error
	suspendErr  error
	resumeErr   error
	destroyErr  error
	shutdownErr error

	defineCalls        int
	destroyCalls       int
	stateAfterShutdown int32 // state DomainGetState reports after DomainShutdown, 0 means unchanged
}

type fakeDomain struct {
	uuid     string
	state    int32
	metadata string
}

func newFakeHypervisor() *fakeHypervisor {
	return &fakeHypervisor{domains: make(map[string]*fakeDomain)}
}

func (f *fakeHypervisor) defineDomain(uuid string, state int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.domains[uuid] = &fakeDomain{uuid: uuid, state: state}
}

func toDomainHandle(fduUUID string) libvirt.Domain {
	var lv libvirt.UUID
	if parsed, err := uuid.Parse(fduUUID); err == nil {
		copy(lv[:], parsed[:])
	}
	return libvirt.Domain{Name: fduUUID, UUID: lv}
}

func fromDomainHandle(dom libvirt.Domain) string {
	return dom.Name
}

func (f *fakeHypervisor) DomainLookupByUUID(u libvirt.UUID) (libvirt.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return libvirt.Domain{}, f.lookupErr
	}
	for id := range f.domains {
		if toDomainHandle(id).UUID == u {
			return toDomainHandle(id), nil
		}
	}
	return libvirt.Domain{}, fmt.Errorf("domain not found")
}

func (f *fakeHypervisor) DomainDefineXML(xml string) (libvirt.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defineCalls++
	if f.defineErr != nil {
		return libvirt.Domain{}, f.defineErr
	}
	return libvirt.Domain{Name: "defined"}, nil
}

func (f *fakeHypervisor) DomainCreate(dom libvirt.Domain) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if d, ok := f.domains[fromDomainHandle(dom)]; ok {
		d.state = domainStateRunning
	}
	return nil
}

func (f *fakeHypervisor) DomainGetState(dom libvirt.Domain, flags uint32) (int32, int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.domains[fromDomainHandle(dom)]
	if !ok {
		return 0, 0, fmt.Errorf("domain not found")
	}
	return d.state, 0, nil
}

func (f *fakeHypervisor) DomainShutdown(dom libvirt.Domain) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.shutdownErr != nil {
		return f.shutdownErr
	}
	if f.stateAfterShutdown != 0 {
		if d, ok := f.domains[fromDomainHandle(dom)]; ok {
			d.state = f.stateAfterShutdown
		}
	}
	return nil
}

func (f *fakeHypervisor) DomainSuspend(dom libvirt.Domain) error {
	if f.suspendErr != nil {
		return f.suspendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.domains[fromDomainHandle(dom)]; ok {
		d.state = 3 // paused
	}
	return nil
}

func (f *fakeHypervisor) DomainResume(dom libvirt.Domain) error {
	if f.resumeErr != nil {
		return f.resumeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.domains[fromDomainHandle(dom)]; ok {
		d.state = domainStateRunning
	}
	return nil
}

func (f *fakeHypervisor) DomainDestroy(dom libvirt.Domain) error {
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyCalls++
	if d, ok := f.domains[fromDomainHandle(dom)]; ok {
		d.state = domainStateShutoff
	}
	return nil
}

func (f *fakeHypervisor) DomainUndefineFlags(dom libvirt.Domain, flags libvirt.DomainUndefineFlagsValues) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.domains, fromDomainHandle(dom))
	return nil
}

func (f *fakeHypervisor) DomainSetMetadata(dom libvirt.Domain, typ int32, metadata libvirt.OptString, key libvirt.OptString, uri libvirt.OptString, flags libvirt.DomainModificationImpact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.domains[fromDomainHandle(dom)]
	if !ok {
		return fmt.Errorf("domain not found")
	}
	if len(metadata) > 0 {
		d.metadata = metadata[0]
	} else {
		d.metadata = ""
	}
	return nil
}

func (f *fakeHypervisor) DomainGetMetadata(dom libvirt.Domain, typ int32, uri libvirt.OptString, flags libvirt.DomainModificationImpact) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.domains[fromDomainHandle(dom)]
	if !ok || d.metadata == "" {
		return "", fmt.Errorf("no metadata")
	}
	return d.metadata, nil
}

// fakeDisk is an in-memory stand-in for internal/disk's Manager. When
// imageDir is set, ImagePath resolves under it so image materialization can
// hit a real temp directory.
type fakeDisk struct {
	mu        sync.Mutex
	imageDir  string
	created   []string
	copied    [][2]string
	removed   []string
	createErr error
	copyErr   error
}

func newFakeDisk() *fakeDisk { return &fakeDisk{} }

func (d *fakeDisk) DiskPath(uuid, format string) string {
	return fmt.Sprintf("/disks/%s.%s", uuid, format)
}
func (d *fakeDisk) ConfigDrivePath(uuid string) string { return fmt.Sprintf("/disks/%s.iso", uuid) }

func (d *fakeDisk) ImagePath(filename string) string {
	if d.imageDir != "" {
		return d.imageDir + "/" + filename
	}
	return fmt.Sprintf("/images/%s", filename)
}

func (d *fakeDisk) CreateDisk(diskPath, format string, sizeGB int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.createErr != nil {
		return d.createErr
	}
	d.created = append(d.created, diskPath)
	return nil
}

func (d *fakeDisk) CopyImage(srcPath, diskPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.copyErr != nil {
		return d.copyErr
	}
	d.copied = append(d.copied, [2]string{srcPath, diskPath})
	return nil
}

func (d *fakeDisk) LogPath(uuid string) string { return fmt.Sprintf("/logs/%s", uuid) }

func (d *fakeDisk) CheckDiskSpace(sizeGB int) error { return nil }

func (d *fakeDisk) RemoveFiles(paths ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removed = append(d.removed, paths...)
	return nil
}

func (d *fakeDisk) DiskExists(path string) (bool, error) { return false, nil }

// fakeFabric is an in-memory stand-in for internal/fabric's Client.
type fakeFabric struct {
	mu         sync.Mutex
	published  []*v1alpha1.FDU
	removed    []string
	images     map[string]*v1alpha1.Image
	flavors    map[string]*v1alpha1.Flavor
	networks   map[string]string
	publishErr error
}

func newFakeFabric() *fakeFabric {
	return &fakeFabric{
		images:   make(map[string]*v1alpha1.Image),
		flavors:  make(map[string]*v1alpha1.Flavor),
		networks: make(map[string]string),
	}
}

func (f *fakeFabric) PublishFDU(fdu *v1alpha1.FDU) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, fdu.DeepCopy())
	return nil
}

func (f *fakeFabric) RemoveFDU(uuid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, uuid)
	return nil
}

func (f *fakeFabric) AddImage(img *v1alpha1.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[img.Spec.UUID] = img
	return nil
}

func (f *fakeFabric) RemoveImage(uuid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.images, uuid)
	return nil
}

func (f *fakeFabric) AddFlavor(fl *v1alpha1.Flavor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flavors[fl.Spec.UUID] = fl
	return nil
}

func (f *fakeFabric) RemoveFlavor(uuid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.flavors, uuid)
	return nil
}

func (f *fakeFabric) FindNodeNetwork(networkUUID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	br, ok := f.networks[networkUUID]
	if !ok {
		return "", fmt.Errorf("network %s not found", networkUUID)
	}
	return br, nil
}

// fakeOSBridge is an in-memory stand-in for internal/osbridge's Bridge.
// Interfaces are kept as an ordered slice, mirroring the real bridge's
// kernel-order listing.
type fakeOSBridge struct {
	mu         sync.Mutex
	stored     map[string][]byte
	executed   []string
	interfaces []osbridge.InterfaceInfo
	intfTypes  map[string]string
	claimed    []string
	storeErr   error
	execErr    error
}

func newFakeOSBridge() *fakeOSBridge {
	return &fakeOSBridge{
		stored:    make(map[string][]byte),
		intfTypes: make(map[string]string),
	}
}

func (o *fakeOSBridge) addInterface(name, kind string, available bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.interfaces = append(o.interfaces, osbridge.InterfaceInfo{Name: name, Available: available})
	o.intfTypes[name] = kind
}

func (o *fakeOSBridge) GetNetworkInformations(networkUUID string) ([]osbridge.InterfaceInfo, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]osbridge.InterfaceInfo, len(o.interfaces))
	copy(out, o.interfaces)
	return out, nil
}

func (o *fakeOSBridge) GetIntfType(intfName string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	kind, ok := o.intfTypes[intfName]
	if !ok {
		return "", fmt.Errorf("unknown interface %s", intfName)
	}
	return kind, nil
}

func (o *fakeOSBridge) SetInterfaceUnavailable(intfName string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.claimed = append(o.claimed, intfName)
	for i := range o.interfaces {
		if o.interfaces[i].Name == intfName {
			o.interfaces[i].Available = false
		}
	}
	return nil
}

func (o *fakeOSBridge) StoreFile(path string, encoded []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.storeErr != nil {
		return o.storeErr
	}
	o.stored[path] = encoded
	return nil
}

func (o *fakeOSBridge) ExecuteCommand(command string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.executed = append(o.executed, command)
	if o.execErr != nil {
		return "", o.execErr
	}
	return "", nil
}
