package executors

import (
	"fmt"
	"strings"
)

// ZFSCheck reports whether the remote has a usable zpool toolchain
// (spec §4.4 zfs_check: `command -v zpool && zpool status` succeed).
func ZFSCheck(r Runner) (bool, error) {
	cmd := `command -v zpool >/dev/null 2>&1 && zpool status >/dev/null 2>&1`
	_, _, code, err := r.Run(cmd)
	if err != nil {
		return false, err
	}
	return code == 0, nil
}

// ZFSPool is one row of ZFSPools's output.
type ZFSPool struct {
	Name   string
	Size   string
	Alloc  string
	Free   string
	Health string
}

// ZFSPools lists pools via a tab-delimited `zpool list`. Returns an
// empty slice, not an error, when zfs is absent (spec §4.4 zfs_pools).
func ZFSPools(r Runner) ([]ZFSPool, error) {
	cmd := `zpool list -H -o name,size,alloc,free,health 2>/dev/null`
	stdout, _, code, err := r.Run(cmd)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return []ZFSPool{}, nil
	}

	out := []ZFSPool{}
	for _, line := range splitNonEmptyLines(stdout) {
		f := strings.Split(line, "\t")
		if len(f) < 5 {
			continue
		}
		out = append(out, ZFSPool{Name: f[0], Size: f[1], Alloc: f[2], Free: f[3], Health: f[4]})
	}
	return out, nil
}

// ZFSDataset is one row of ZFSDatasets's output.
type ZFSDataset struct {
	Name  string
	Used  string
	Avail string
	Refer string
	Mount string
}

// ZFSDatasets lists datasets, optionally scoped to pool (spec §4.4
// zfs_datasets).
func ZFSDatasets(r Runner, pool string) ([]ZFSDataset, error) {
	var target string
	if pool != "" {
		target = shellQuote(pool)
	}
	cmd := fmt.Sprintf("zfs list -H -o name,used,avail,refer,mountpoint %s 2>/dev/null", target)
	stdout, _, code, err := r.Run(cmd)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return []ZFSDataset{}, nil
	}

	out := []ZFSDataset{}
	for _, line := range splitNonEmptyLines(stdout) {
		f := strings.Split(line, "\t")
		if len(f) < 5 {
			continue
		}
		out = append(out, ZFSDataset{Name: f[0], Used: f[1], Avail: f[2], Refer: f[3], Mount: f[4]})
	}
	return out, nil
}

// ZFSSnapshot is one row of ZFSSnapshots's output.
type ZFSSnapshot struct {
	Name    string
	Used    string
	Refer   string
	Created string
}

// DefaultSnapshotLimit matches spec §4.4 zfs_snapshots's default of 50,
// enforced remotely via `tail -N`.
const DefaultSnapshotLimit = 50

// ZFSSnapshots lists snapshots, optionally scoped to dataset, capped at
// limit (0 means DefaultSnapshotLimit).
func ZFSSnapshots(r Runner, dataset string, limit int) ([]ZFSSnapshot, error) {
	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}
	target := ""
	if dataset != "" {
		target = shellQuote(dataset)
	}
	cmd := fmt.Sprintf("zfs list -H -t snapshot -o name,used,refer,creation %s 2>/dev/null | tail -n %d", target, limit)
	stdout, _, code, err := r.Run(cmd)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return []ZFSSnapshot{}, nil
	}

	out := []ZFSSnapshot{}
	for _, line := range splitNonEmptyLines(stdout) {
		f := strings.Split(line, "\t")
		if len(f) < 4 {
			continue
		}
		out = append(out, ZFSSnapshot{Name: f[0], Used: f[1], Refer: f[2], Created: f[3]})
	}
	return out, nil
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
