package engine

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/digitalocean/go-libvirt"

	"github.com/jbweber/fdurt/api/v1alpha1"
	"github.com/jbweber/fdurt/internal/cloudinit"
	"github.com/jbweber/fdurt/internal/metadata"
	"github.com/jbweber/fdurt/internal/naming"
	"github.com/jbweber/fdurt/internal/render"
	"github.com/jbweber/fdurt/internal/status"
)

// ConfigureFDU provisions storage, networking, and a libvirt domain for a
// DEFINED FDU, moving it to CONFIGURED.
func (e *Engine) ConfigureFDU(uuid string) error {
	return e.mailboxes.run(uuid, func() (err error) {
		fdu, err := e.getFDU(uuid)
		if err != nil {
			return err
		}
		if fdu.GetState() != v1alpha1.FDUStateDefined {
			return &status.StateTransitionNotAllowedError{From: fdu.GetState(), To: v1alpha1.FDUStateConfigured}
		}
		defer func() {
			var cmdErr *ExternalCommandFailureError
			if errors.As(err, &cmdErr) {
				status.TransitionToFailed(fdu, "ExternalCommandFailed", cmdErr.Error())
				_ = e.publish(fdu)
			}
		}()

		// 1. Resolve flavor and image references.
		img, ok := e.reg.getImage(fdu.Status.ImageID)
		if !ok {
			return &ResolutionFailureError{Kind: "image", Ref: fdu.Status.ImageID, Err: fmt.Errorf("not registered")}
		}
		flavor, ok := e.reg.getFlavor(fdu.Status.FlavorID)
		if !ok {
			return &ResolutionFailureError{Kind: "flavor", Ref: fdu.Status.FlavorID, Err: fmt.Errorf("not registered")}
		}

		// 2. Compute disk_path and cdrom_path.
		diskPath := e.disk.DiskPath(fdu.Spec.UUID, img.Spec.Format)
		cdromPath := e.disk.ConfigDrivePath(fdu.Spec.UUID)

		// 3. Resolve network attachments.
		networks := make([]v1alpha1.NetworkAttachment, len(fdu.Spec.Networks))
		copy(networks, fdu.Spec.Networks)
		for i := range networks {
			if err := e.resolveNetworkAttachment(&networks[i], i); err != nil {
				return err
			}
		}

		// 4. Render domain XML.
		domainXML, err := render.RenderDomainXML(render.DomainParams{
			Name:      fdu.Name,
			UUID:      fdu.Spec.UUID,
			MemoryMB:  flavor.Spec.MemoryMB,
			CPU:       flavor.Spec.CPU,
			DiskImage: diskPath,
			ISOImage:  cdromPath,
			Format:    img.Spec.Format,
			Networks:  networks,
		})
		if err != nil {
			return &ResolutionFailureError{Kind: "domain-xml", Ref: fdu.Spec.UUID, Err: err}
		}

		// 5. Render vendor-data and store it through the OS bridge.
		vendorData, err := cloudinit.GenerateVendorData(e.cfg.NodeID, fdu.Spec.UUID)
		if err != nil {
			return err
		}
		vendorPath := fmt.Sprintf("%s/%s", e.cfg.BaseDir, naming.VendorDataFileName(fdu.Spec.UUID))
		if err := e.os.StoreFile(vendorPath, encodeTransport([]byte(vendorData))); err != nil {
			return &HypervisorTransportError{Op: "StoreFile", Err: err}
		}

		// 6. Build the config-drive command.
		cmd := []string{
			"templates/create_config_drive.sh",
			"--hostname", fdu.Name,
			"--uuid", fdu.Spec.UUID,
			"--vendor-data", vendorPath,
		}
		var userDataPath, sshKeyPath string
		if fdu.Spec.UserFile != "" {
			userDataPath = fmt.Sprintf("%s/%s", e.cfg.BaseDir, naming.UserDataFileName(fdu.Spec.UUID))
			if err := e.os.StoreFile(userDataPath, encodeTransport([]byte(fdu.Spec.UserFile))); err != nil {
				return &HypervisorTransportError{Op: "StoreFile", Err: err}
			}
			cmd = append(cmd, "--user-data", userDataPath)
		}
		if fdu.Spec.SSHKey != "" {
			sshKeyPath = fmt.Sprintf("%s/%s", e.cfg.BaseDir, naming.SSHKeyFileName(fdu.Spec.UUID))
			if err := e.os.StoreFile(sshKeyPath, encodeTransport([]byte(fdu.Spec.SSHKey))); err != nil {
				return &HypervisorTransportError{Op: "StoreFile", Err: err}
			}
			cmd = append(cmd, "--ssh-key", sshKeyPath)
		}
		cmd = append(cmd, cdromPath)

		// 7. Allocate an empty disk, after a free-space preflight.
		if err := e.disk.CheckDiskSpace(flavor.Spec.DiskSizeGB); err != nil {
			return &ExternalCommandFailureError{Command: "disk space preflight", Err: err}
		}
		if err := e.disk.CreateDisk(diskPath, img.Spec.Format, flavor.Spec.DiskSizeGB); err != nil {
			return &ExternalCommandFailureError{Command: "qemu-img create", Err: err}
		}

		// 8. Execute the config-drive command.
		if out, err := e.os.ExecuteCommand(strings.Join(cmd, " ")); err != nil {
			return &ExternalCommandFailureError{Command: cmd[0], Output: out, Err: err}
		}

		// 9. Copy the base image into the working disk.
		if err := e.disk.CopyImage(img.Status.LocalPath, diskPath); err != nil {
			return &ExternalCommandFailureError{Command: "dd", Err: err}
		}

		// 10. Remove transient files.
		toRemove := []string{vendorPath}
		if userDataPath != "" {
			toRemove = append(toRemove, userDataPath)
		}
		if sshKeyPath != "" {
			toRemove = append(toRemove, sshKeyPath)
		}
		if err := e.disk.RemoveFiles(toRemove...); err != nil {
			e.log.WithError(err).WithField("fdu", uuid).Warn("configure_fdu: failed to remove transient files")
		}

		// 11. Define the domain, retrying once on transport error.
		dom, err := e.defineDomainWithRetry(domainXML)
		if err != nil {
			return err
		}

		// Stash the FDU record on the domain itself, as a recovery cache
		// beside the fabric's actual-state record.
		if err := metadata.Store(e.hv, dom, fdu); err != nil {
			e.log.WithError(err).WithField("fdu", uuid).Warn("configure_fdu: failed to store domain metadata")
		}

		fdu.Spec.Networks = networks
		fdu.Status.DiskPath = diskPath
		fdu.Status.CdromPath = cdromPath
		fdu.Status.DomainXML = domainXML
		if err := status.TransitionToConfigured(fdu); err != nil {
			return err
		}

		// 12. on_configured + publish.
		if e.Hooks.OnConfigured != nil {
			e.Hooks.OnConfigured(fdu)
		}
		e.putFDU(fdu)
		return e.publish(fdu)
	})
}

// resolveNetworkAttachment fills in the host-side fields of a network
// attachment: direct_intf for wifi types, br_name for bridge types, and a
// default veth{index} interface name when none was supplied.
func (e *Engine) resolveNetworkAttachment(n *v1alpha1.NetworkAttachment, index int) error {
	if n.IntfName == "" {
		n.IntfName = naming.DefaultIntfName(index)
	}

	if n.Type == "wifi" {
		ifaces, err := e.os.GetNetworkInformations(n.NetworkUUID)
		if err != nil {
			return &ResolutionFailureError{Kind: "network", Ref: n.NetworkUUID, Err: err}
		}
		// Interfaces arrive in kernel order; the first available wireless
		// one is claimed and the scan stops there.
		for _, iface := range ifaces {
			if !iface.Available {
				continue
			}
			kind, err := e.os.GetIntfType(iface.Name)
			if err != nil {
				continue
			}
			if kind == "wireless" {
				if err := e.os.SetInterfaceUnavailable(iface.Name); err != nil {
					return &ResolutionFailureError{Kind: "network", Ref: iface.Name, Err: err}
				}
				n.DirectIntf = iface.Name
				break
			}
		}
		return nil
	}

	if n.NetworkUUID != "" {
		brName, err := e.fabric.FindNodeNetwork(n.NetworkUUID)
		if err != nil {
			return &ResolutionFailureError{Kind: "network", Ref: n.NetworkUUID, Err: err}
		}
		n.BrName = brName
	}
	return nil
}

// defineDomainWithRetry calls DomainDefineXML, reopening the connection and
// retrying once on a transport failure. Without a reopen hook the retry runs
// on the existing connection, which still covers transient RPC hiccups.
func (e *Engine) defineDomainWithRetry(domainXML string) (libvirt.Domain, error) {
	dom, err := e.hv.DomainDefineXML(domainXML)
	if err == nil {
		return dom, nil
	}
	e.log.WithError(err).Warn("configure_fdu: DomainDefineXML failed, reconnecting and retrying once")

	if e.reopen != nil {
		hv, reopenErr := e.reopen()
		if reopenErr != nil {
			return libvirt.Domain{}, &HypervisorTransportError{Op: "reconnect", Err: reopenErr}
		}
		e.hv = hv
	}

	dom, err = e.hv.DomainDefineXML(domainXML)
	if err != nil {
		return libvirt.Domain{}, &HypervisorTransportError{Op: "DomainDefineXML", Err: err}
	}
	return dom, nil
}

// encodeTransport applies the base64-then-hex encoding store_file expects on
// the wire; the OS plugin reverses it before writing to disk.
func encodeTransport(data []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)
	return []byte(hex.EncodeToString([]byte(encoded)))
}
