package engine

import (
	"sync"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

// registry holds the images and flavors known to this node, keyed by UUID.
// Populated by define_fdu's resolution step and by the engine's
// AddImage/AddFlavor/RegisterImage/RegisterFlavor calls; read by
// configure_fdu.
type registry struct {
	mu      sync.RWMutex
	images  map[string]*v1alpha1.Image
	flavors map[string]*v1alpha1.Flavor
}

func newRegistry() *registry {
	return &registry{
		images:  make(map[string]*v1alpha1.Image),
		flavors: make(map[string]*v1alpha1.Flavor),
	}
}

func (r *registry) putImage(img *v1alpha1.Image) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[img.Spec.UUID] = img
}

func (r *registry) getImage(uuid string) (*v1alpha1.Image, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	img, ok := r.images[uuid]
	return img, ok
}

func (r *registry) removeImage(uuid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.images, uuid)
}

func (r *registry) putFlavor(f *v1alpha1.Flavor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flavors[f.Spec.UUID] = f
}

func (r *registry) getFlavor(uuid string) (*v1alpha1.Flavor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.flavors[uuid]
	return f, ok
}

func (r *registry) removeFlavor(uuid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flavors, uuid)
}

func (r *registry) imageUUIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.images))
	for uuid := range r.images {
		out = append(out, uuid)
	}
	return out
}

func (r *registry) flavorUUIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.flavors))
	for uuid := range r.flavors {
		out = append(out, uuid)
	}
	return out
}
