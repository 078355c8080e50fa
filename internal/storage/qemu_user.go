package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"
	"sync"
)

var (
	qemuUID  string
	qemuGID  string
	qemuOnce sync.Once
	qemuErr  error
)

// GetQEMUUserGroup returns the UID and GID the host's QEMU processes run
// as, so pool and volume permissions can be set to something the domain can
// actually open. Resolution order: the user/group configured in
// /etc/libvirt/qemu.conf, then the common qemu/libvirt-qemu account names,
// then 107 (the Fedora/RHEL default). Cached after the first call.
func GetQEMUUserGroup() (uid, gid string, err error) {
	qemuOnce.Do(func() {
		username, groupname := getQEMUConfiguredUser()

		if username != "" {
			u, err := user.Lookup(username)
			if err == nil {
				qemuUID = u.Uid
				qemuGID = u.Gid
				if groupname != "" {
					if g, err := user.LookupGroup(groupname); err == nil {
						qemuGID = g.Gid
					}
				}
				return
			}
		}

		for _, username := range []string{"qemu", "libvirt-qemu"} {
			if u, err := user.Lookup(username); err == nil {
				qemuUID = u.Uid
				qemuGID = u.Gid
				return
			}
		}

		qemuUID = "107"
		qemuGID = "107"
		qemuErr = fmt.Errorf("could not determine QEMU user/group, using fallback UID/GID 107")
	})

	return qemuUID, qemuGID, qemuErr
}

// getQEMUConfiguredUser extracts the user and group settings from
// /etc/libvirt/qemu.conf, returning empty strings when the file is missing
// or the keys aren't set.
func getQEMUConfiguredUser() (username, groupname string) {
	file, err := os.Open("/etc/libvirt/qemu.conf")
	if err != nil {
		return "", ""
	}
	defer func() { _ = file.Close() }()

	return parseQEMUConf(file)
}

// parseQEMUConf scans qemu.conf-style key = "value" lines for the user and
// group settings, ignoring comments and blank lines.
func parseQEMUConf(r io.Reader) (username, groupname string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		switch strings.TrimSpace(key) {
		case "user":
			username = value
		case "group":
			groupname = value
		}
	}

	return username, groupname
}
