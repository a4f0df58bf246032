// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"bufio"
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// xfsSuperMagic is the f_type value unix.Statfs reports for XFS.
// unix.XFS_SUPER_MAGIC exists but is typed for the wrong field width
// on some architectures, so we compare against the literal.
const xfsSuperMagic = 0x58465342

// ProjectQuotaSupported reports whether dir lives on an XFS
// filesystem mounted with project quota accounting. Only then can a
// persistent workspace get a kernel-enforced size limit.
func ProjectQuotaSupported(dir string) bool {
	var fs unix.Statfs_t
	if err := unix.Statfs(dir, &fs); err != nil {
		return false
	}
	if fs.Type != xfsSuperMagic {
		return false
	}
	return mountHasProjectQuota(dir, "/proc/mounts")
}

// mountHasProjectQuota scans a mounts table for the longest mount
// point containing dir and checks its options for prjquota.
func mountHasProjectQuota(dir, mountsPath string) bool {
	file, err := os.Open(mountsPath)
	if err != nil {
		return false
	}
	defer file.Close()

	bestLen := -1
	bestOpts := ""
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		mountPoint := fields[1]
		if !pathWithin(dir, mountPoint) {
			continue
		}
		if len(mountPoint) > bestLen {
			bestLen = len(mountPoint)
			bestOpts = fields[3]
		}
	}

	for _, opt := range strings.Split(bestOpts, ",") {
		if opt == "prjquota" || opt == "pquota" {
			return true
		}
	}
	return false
}

func pathWithin(path, root string) bool {
	if root == "/" {
		return true
	}
	return path == root || strings.HasPrefix(path, root+"/")
}

// workspaceProjectID derives a stable XFS project ID for a sandbox
// name. IDs land in a high range to stay clear of manually assigned
// projects.
func workspaceProjectID(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return 0x40000000 | (h.Sum32() & 0x3fffffff)
}

// applyProjectQuota assigns dir to a project and sets a hard block
// limit, using xfs_quota the way the rest of the runtime shells out
// to bwrap and systemd-run rather than reimplementing their syscalls.
func applyProjectQuota(ctx context.Context, dir string, sizeBytes int64, name string) error {
	id := workspaceProjectID(name)
	mountPoint, err := mountPointOf(dir)
	if err != nil {
		return fmt.Errorf("resolving mount point for %s: %w", dir, err)
	}

	setup := fmt.Sprintf("project -s -p %s %d", dir, id)
	limit := fmt.Sprintf("limit -p bhard=%d %d", sizeBytes, id)
	for _, command := range []string{setup, limit} {
		cmd := exec.CommandContext(ctx, "xfs_quota", "-x", "-c", command, mountPoint)
		if output, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("xfs_quota %q: %w: %s", command, err, strings.TrimSpace(string(output)))
		}
	}
	return nil
}

// clearProjectQuota removes the block limit for a sandbox's project.
// Quota accounting on a deleted directory holds no blocks, so a
// failure here only leaks a limit entry; callers log and move on.
func clearProjectQuota(ctx context.Context, dir string, name string) error {
	id := workspaceProjectID(name)
	mountPoint, err := mountPointOf(dir)
	if err != nil {
		return fmt.Errorf("resolving mount point for %s: %w", dir, err)
	}
	command := "limit -p bhard=0 " + strconv.FormatUint(uint64(id), 10)
	cmd := exec.CommandContext(ctx, "xfs_quota", "-x", "-c", command, mountPoint)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("xfs_quota %q: %w: %s", command, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// mountPointOf walks up from dir until the device number changes,
// returning the mount point that contains dir.
func mountPointOf(dir string) (string, error) {
	var stat unix.Stat_t
	if err := unix.Stat(dir, &stat); err != nil {
		return "", err
	}
	current := dir
	for current != "/" {
		parent := parentDir(current)
		var parentStat unix.Stat_t
		if err := unix.Stat(parent, &parentStat); err != nil {
			return "", err
		}
		if parentStat.Dev != stat.Dev {
			return current, nil
		}
		current = parent
	}
	return "/", nil
}

func parentDir(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}
