package engine

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/fdurt/api/v1alpha1"
	"github.com/jbweber/fdurt/internal/storage"
)

// AddImage materializes an image's base blob under the images directory,
// stamps its local path, registers it, and publishes it to the fabric. Used
// both for images pushed directly to the registry and for the ones
// define_fdu synthesizes from a bare URL.
func (e *Engine) AddImage(img *v1alpha1.Image) error {
	localPath := e.disk.ImagePath(imageBasename(img))

	if err := materializeImage(img.Spec.BaseImageURL, localPath); err != nil {
		return &ExternalCommandFailureError{Command: "materialize image", Err: err}
	}

	// Sniff the blob's real format. The URL extension wins for naming, but a
	// mismatch usually means a broken upload, so surface it here rather than
	// letting qemu-img trip over it at configure time.
	if sniffed, err := storage.DetectImageFormat(localPath); err == nil {
		if img.Spec.Format == "" {
			img.Spec.Format = string(sniffed)
		} else if img.Spec.Format != string(sniffed) {
			e.log.WithFields(logrus.Fields{
				"image":    img.Spec.UUID,
				"declared": img.Spec.Format,
				"detected": string(sniffed),
			}).Warn("add_image: declared format does not match image contents")
		}
	}

	img.Status.LocalPath = localPath
	e.reg.putImage(img)
	if e.fabric != nil {
		if err := e.fabric.AddImage(img); err != nil {
			e.log.WithError(err).WithField("image", img.Spec.UUID).Warn("add_image: fabric publish failed")
		}
	}
	return nil
}

// RegisterImage adds an already-materialized image to the local registry
// without touching the filesystem or the fabric.
func (e *Engine) RegisterImage(img *v1alpha1.Image) { e.reg.putImage(img) }

// RemoveImage deletes an image's materialized blob, removes it from the
// registry, and retracts it from the fabric.
func (e *Engine) RemoveImage(uuid string) error {
	img, ok := e.reg.getImage(uuid)
	if !ok {
		return fmt.Errorf("image %s not registered", uuid)
	}
	if err := e.disk.RemoveFiles(img.Status.LocalPath); err != nil {
		return err
	}
	e.reg.removeImage(uuid)
	if e.fabric != nil {
		if err := e.fabric.RemoveImage(uuid); err != nil {
			e.log.WithError(err).WithField("image", uuid).Warn("remove_image: fabric retract failed")
		}
	}
	return nil
}

// AddFlavor registers a flavor and publishes it. Flavors are pure metadata,
// so there is no file materialization step.
func (e *Engine) AddFlavor(f *v1alpha1.Flavor) {
	e.reg.putFlavor(f)
	if e.fabric != nil {
		if err := e.fabric.AddFlavor(f); err != nil {
			e.log.WithError(err).WithField("flavor", f.Spec.UUID).Warn("add_flavor: fabric publish failed")
		}
	}
}

// RegisterFlavor adds a flavor to the local registry without publishing.
func (e *Engine) RegisterFlavor(f *v1alpha1.Flavor) { e.reg.putFlavor(f) }

// RemoveFlavor unregisters a flavor and retracts it from the fabric.
func (e *Engine) RemoveFlavor(uuid string) {
	e.reg.removeFlavor(uuid)
	if e.fabric != nil {
		if err := e.fabric.RemoveFlavor(uuid); err != nil {
			e.log.WithError(err).WithField("flavor", uuid).Warn("remove_flavor: fabric retract failed")
		}
	}
}

// imageBasename returns the cache file name for an image: the last path
// segment of its source URL, so images/{filename} is keyed by URL basename.
// A URL with no usable basename falls back to the image UUID.
func imageBasename(img *v1alpha1.Image) string {
	base := path.Base(img.Spec.BaseImageURL)
	if base == "." || base == "/" || base == "" {
		base = img.Spec.UUID
		if img.Spec.Format != "" {
			base = fmt.Sprintf("%s.%s", img.Spec.UUID, img.Spec.Format)
		}
	}
	return base
}

// materializeImage fetches an http(s):// URL or copies a file:// path into
// localPath.
func materializeImage(sourceURL, localPath string) error {
	switch {
	case strings.HasPrefix(sourceURL, "http://"), strings.HasPrefix(sourceURL, "https://"):
		resp, err := http.Get(sourceURL)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", sourceURL, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetch %s: unexpected status %s", sourceURL, resp.Status)
		}

		out, err := os.Create(localPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", localPath, err)
		}
		defer out.Close()

		if _, err := io.Copy(out, resp.Body); err != nil {
			return fmt.Errorf("failed to write %s: %w", localPath, err)
		}
		return nil

	case strings.HasPrefix(sourceURL, "file://"):
		src := strings.TrimPrefix(sourceURL, "file://")
		in, err := os.Open(src)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", src, err)
		}
		defer in.Close()

		out, err := os.Create(localPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", localPath, err)
		}
		defer out.Close()

		if _, err := io.Copy(out, in); err != nil {
			return fmt.Errorf("failed to copy %s to %s: %w", src, localPath, err)
		}
		return nil

	default:
		return fmt.Errorf("unsupported base image URL scheme: %q", sourceURL)
	}
}
