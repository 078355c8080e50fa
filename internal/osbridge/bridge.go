package osbridge

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/jbweber/fdurt/internal/cloudinit"
)

// Bridge is the local OSBridge adapter.
type Bridge struct{}

// New constructs a Bridge.
func New() *Bridge { return &Bridge{} }

// DirExists reports whether path exists and is a directory.
func (b *Bridge) DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// CreateDir makes path and any missing parents.
func (b *Bridge) CreateDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// StoreFile decodes encoded (base64-then-hex) and writes the resulting
// bytes to path.
func (b *Bridge) StoreFile(path string, encoded []byte) error {
	data, err := decodeTransport(encoded)
	if err != nil {
		return fmt.Errorf("failed to decode payload for %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}

// RemoveFile deletes path, treating a missing file as success.
func (b *Bridge) RemoveFile(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ReadFile returns the raw contents of path.
func (b *Bridge) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DownloadFile fetches an http(s) URL to destPath.
func (b *Bridge) DownloadFile(url, destPath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := out.ReadFrom(resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}
	return nil
}

// ExecuteCommand runs command, with one built-in special case: the
// create_config_drive.sh invocation configure_fdu issues is assembled
// in-process via internal/cloudinit rather than shelled out, since no such
// script ships with this plugin — the command's argument contract is honored,
// only its implementation differs.
func (b *Bridge) ExecuteCommand(command string) (string, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty command")
	}

	if strings.HasSuffix(fields[0], "create_config_drive.sh") {
		return "", b.buildConfigDrive(fields[1:])
	}

	cmd := exec.Command(fields[0], fields[1:]...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

type configDriveArgs struct {
	hostname, uuid, vendorData, userData, sshKey, cdromPath string
}

func parseConfigDriveArgs(args []string) configDriveArgs {
	var opts configDriveArgs
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--hostname":
			i++
			if i < len(args) {
				opts.hostname = args[i]
			}
		case "--uuid":
			i++
			if i < len(args) {
				opts.uuid = args[i]
			}
		case "--vendor-data":
			i++
			if i < len(args) {
				opts.vendorData = args[i]
			}
		case "--user-data":
			i++
			if i < len(args) {
				opts.userData = args[i]
			}
		case "--ssh-key":
			i++
			if i < len(args) {
				opts.sshKey = args[i]
			}
		default:
			opts.cdromPath = args[i]
		}
	}
	return opts
}

// buildConfigDrive reads back the already-decoded vendor-data/user-data/
// ssh-key files store_file wrote to disk and assembles them into the
// CIDATA ISO at the command's trailing positional argument.
func (b *Bridge) buildConfigDrive(args []string) error {
	opts := parseConfigDriveArgs(args)
	if opts.vendorData == "" {
		return fmt.Errorf("config drive command missing --vendor-data")
	}
	if opts.cdromPath == "" {
		return fmt.Errorf("config drive command missing destination path")
	}

	files := map[string][]byte{}

	vendorData, err := os.ReadFile(opts.vendorData)
	if err != nil {
		return fmt.Errorf("failed to read vendor-data %s: %w", opts.vendorData, err)
	}
	files["vendor-data"] = vendorData

	if opts.userData != "" {
		data, err := os.ReadFile(opts.userData)
		if err != nil {
			return fmt.Errorf("failed to read user-data %s: %w", opts.userData, err)
		}
		files["user-data"] = data
	}
	if opts.sshKey != "" {
		data, err := os.ReadFile(opts.sshKey)
		if err != nil {
			return fmt.Errorf("failed to read ssh key %s: %w", opts.sshKey, err)
		}
		files[fmt.Sprintf("key_%s.pub", opts.uuid)] = data
	}

	iso, err := cloudinit.BuildConfigDrive(files)
	if err != nil {
		return err
	}
	return os.WriteFile(opts.cdromPath, iso, 0644)
}

// InterfaceInfo reports one host interface's name and availability.
type InterfaceInfo struct {
	Name      string
	Available bool
}

// GetNetworkInformations reports the host's interfaces in kernel (index)
// order, so a first-match scan over the result is deterministic. networkUUID
// is accepted for contract parity but this single-node adapter doesn't scope
// interfaces by network.
func (b *Bridge) GetNetworkInformations(networkUUID string) ([]InterfaceInfo, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	result := make([]InterfaceInfo, 0, len(ifaces))
	for _, iface := range ifaces {
		result = append(result, InterfaceInfo{
			Name:      iface.Name,
			Available: iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagLoopback == 0,
		})
	}
	return result, nil
}

// GetIntfType classifies an interface as "wireless" or "ethernet" by name
// prefix, the same heuristic Linux predictable-interface-naming uses.
func (b *Bridge) GetIntfType(intfName string) (string, error) {
	if _, err := net.InterfaceByName(intfName); err != nil {
		return "", err
	}
	if strings.HasPrefix(intfName, "wl") {
		return "wireless", nil
	}
	return "ethernet", nil
}

// SetInterfaceUnavailable marks an interface as claimed. This unprivileged
// adapter can't change link state (that needs CAP_NET_ADMIN), so it is a
// no-op that exists for contract parity with a privileged OS plugin.
func (b *Bridge) SetInterfaceUnavailable(intfName string) error {
	return nil
}

func decodeTransport(encoded []byte) ([]byte, error) {
	b64, err := hex.DecodeString(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("hex decode: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	return data, nil
}
