package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"scout-gateway/internal/executors"
	"scout-gateway/internal/hostinfo"
	"scout-gateway/internal/middleware"
	"scout-gateway/internal/router"
	"scout-gateway/internal/scouterr"
	"scout-gateway/internal/sshpool"
)

// Resource is a read result: text plus its MIME type (spec §6 "a text
// payload plus a MIME type").
type Resource struct {
	Text string
	MIME string
}

// ReadResource implements the resource-read half of the dispatcher (spec
// §4.6/§4.7): the same router/executor flow as Scout, but failures
// surface as typed ResourceNotFound/ResourceError rather than strings.
func (d *Dispatcher) ReadResource(uriStr string) (Resource, error) {
	call := middleware.Call{Kind: "resource", Label: "resource:" + uriStr, Detail: uriStr}

	var mime string
	text, err := d.chain.Run(call, func() (string, error) {
		r, err := d.readResourceInner(uriStr)
		mime = r.MIME
		return r.Text, err
	})
	if err != nil {
		return Resource{}, classifyResourceErr(err)
	}
	return Resource{Text: text, MIME: mime}, nil
}

// classifyResourceErr implements spec §7's resource boundary propagation
// policy: ResourceNotFound and PathNotFound propagate as ResourceNotFound;
// everything else becomes a ResourceError carrying the cause.
func classifyResourceErr(err error) error {
	if errors.Is(err, scouterr.ErrResourceNotFound) || errors.Is(err, scouterr.ErrPathNotFound) {
		return &ResourceNotFound{Cause: err}
	}
	return &ResourceError{Cause: err}
}

func (d *Dispatcher) readResourceInner(uriStr string) (Resource, error) {
	uri, err := hostinfo.ParseResourceURI(uriStr)
	if err != nil {
		return Resource{}, wrap(scouterr.ErrInvalidTarget, "Invalid resource URI %q", uriStr)
	}

	m, ok := d.router.Match(uri.Scheme, uri.Rest)
	if !ok {
		return Resource{}, wrap(scouterr.ErrResourceNotFound, "No route for %s", uriStr)
	}

	hostName := m.BoundHost
	if hostName == "" {
		hostName = m.Params["host"]
	}

	if m.HandlerID == "hosts_list" {
		return Resource{Text: formatHostsListing(d.hosts.All(), d.probeHosts()), MIME: "text/plain"}, nil
	}

	h, err := d.resolveHost(hostName)
	if err != nil {
		return Resource{}, err
	}
	sess, err := d.session(h)
	if err != nil {
		return Resource{}, err
	}

	return d.runHandler(sess, h, m)
}

func (d *Dispatcher) runHandler(sess *sshpool.Session, h hostinfo.Host, m router.Match) (Resource, error) {
	switch m.HandlerID {
	case "scout_path", "path_read":
		return d.readPath(sess, h, normalizePath(m.Wildcard))
	case "docker_ps":
		list, err := executors.DockerPS(sess)
		if err != nil {
			return Resource{}, wrap(scouterr.ErrReadFailed, "docker ps failed: %s", err.Error())
		}
		return Resource{Text: formatContainers(list), MIME: "text/plain"}, nil
	case "docker_logs":
		text, exists, err := executors.DockerLogs(sess, m.Params["container"], 200, true)
		if err != nil {
			return Resource{}, wrap(scouterr.ErrReadFailed, "docker logs failed: %s", err.Error())
		}
		if !exists {
			return Resource{}, wrap(scouterr.ErrResourceNotFound, "No such container: %s", m.Params["container"])
		}
		return Resource{Text: text, MIME: "text/plain"}, nil
	case "compose_ls":
		list, err := executors.ComposeLs(sess)
		if err != nil {
			return Resource{}, wrap(scouterr.ErrReadFailed, "compose ls failed: %s", err.Error())
		}
		return Resource{Text: formatComposeProjects(list), MIME: "text/plain"}, nil
	case "compose_file":
		text, found, err := executors.ComposeFile(sess, m.Params["project"])
		if err != nil {
			return Resource{}, wrap(scouterr.ErrReadFailed, "compose file read failed: %s", err.Error())
		}
		if !found {
			return Resource{}, wrap(scouterr.ErrResourceNotFound, "Unknown compose project: %s", m.Params["project"])
		}
		return Resource{Text: text, MIME: "text/yaml"}, nil
	case "compose_logs":
		text, found, err := executors.ComposeLogs(sess, m.Params["project"], 200)
		if err != nil {
			return Resource{}, wrap(scouterr.ErrReadFailed, "compose logs failed: %s", err.Error())
		}
		if !found {
			return Resource{}, wrap(scouterr.ErrResourceNotFound, "Unknown compose project: %s", m.Params["project"])
		}
		return Resource{Text: text, MIME: "text/plain"}, nil
	case "zfs_pools":
		pools, err := executors.ZFSPools(sess)
		if err != nil {
			return Resource{}, wrap(scouterr.ErrReadFailed, "zpool list failed: %s", err.Error())
		}
		return Resource{Text: formatZFSPools(pools), MIME: "text/plain"}, nil
	case "zfs_dataset_root", "zfs_datasets":
		datasets, err := executors.ZFSDatasets(sess, m.Params["pool"])
		if err != nil {
			return Resource{}, wrap(scouterr.ErrReadFailed, "zfs list failed: %s", err.Error())
		}
		return Resource{Text: formatZFSDatasets(datasets), MIME: "text/plain"}, nil
	case "zfs_snapshots":
		snaps, err := executors.ZFSSnapshots(sess, m.Params["dataset"], executors.DefaultSnapshotLimit)
		if err != nil {
			return Resource{}, wrap(scouterr.ErrReadFailed, "zfs snapshot list failed: %s", err.Error())
		}
		return Resource{Text: formatZFSSnapshots(snaps), MIME: "text/plain"}, nil
	case "syslog_read":
		text, _, err := executors.SyslogRead(sess, 100)
		if err != nil {
			return Resource{}, wrap(scouterr.ErrReadFailed, "syslog read failed: %s", err.Error())
		}
		return Resource{Text: text, MIME: "text/plain"}, nil
	case "system_summary":
		text, err := executors.SystemSummary(sess)
		if err != nil {
			return Resource{}, wrap(scouterr.ErrReadFailed, "system summary failed: %s", err.Error())
		}
		return Resource{Text: text, MIME: "text/plain"}, nil
	default:
		return Resource{}, wrap(scouterr.ErrResourceNotFound, "Unknown resource handler %q", m.HandlerID)
	}
}

// normalizePath prepends "/" if absent, for resources reached via the
// catch-all H://{path*} (spec §4.6).
func normalizePath(p string) string {
	if p == "" || strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

func (d *Dispatcher) readPath(sess *sshpool.Session, h hostinfo.Host, path string) (Resource, error) {
	stat, err := executors.StatPath(sess, path)
	if err != nil {
		return Resource{}, wrap(scouterr.ErrReadFailed, "Stat failed: %s", err.Error())
	}
	if !stat.Found() {
		return Resource{}, wrap(scouterr.ErrPathNotFound, "Path not found: %s", path)
	}
	if stat.IsDirectory {
		listing, err := executors.LsDir(sess, path)
		if err != nil {
			return Resource{}, wrap(scouterr.ErrReadFailed, "Directory listing failed: %s", err.Error())
		}
		return Resource{Text: fmt.Sprintf("# Directory: %s:%s\n\n%s", h.Name, path, listing), MIME: "text/plain"}, nil
	}

	text, truncated, err := executors.CatFile(sess, path, d.cfg.MaxFileSize)
	if err != nil {
		return Resource{}, wrap(scouterr.ErrReadFailed, "Read failed: %s", err.Error())
	}
	if truncated {
		text += fmt.Sprintf("\n\n[truncated at %d bytes]", d.cfg.MaxFileSize)
	}
	return Resource{Text: text, MIME: "text/plain"}, nil
}

func formatContainers(list []executors.ContainerInfo) string {
	lines := make([]string, 0, len(list))
	for _, c := range list {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%s", c.Name, c.Image, c.Status, c.Ports))
	}
	return strings.Join(lines, "\n")
}

func formatComposeProjects(list []executors.ComposeProject) string {
	lines := make([]string, 0, len(list))
	for _, p := range list {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", p.Name, p.Status, p.ConfigFiles))
	}
	return strings.Join(lines, "\n")
}

func formatZFSPools(list []executors.ZFSPool) string {
	lines := make([]string, 0, len(list))
	for _, p := range list {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%s\t%s", p.Name, p.Size, p.Alloc, p.Free, p.Health))
	}
	return strings.Join(lines, "\n")
}

func formatZFSDatasets(list []executors.ZFSDataset) string {
	lines := make([]string, 0, len(list))
	for _, ds := range list {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%s\t%s", ds.Name, ds.Used, ds.Avail, ds.Refer, ds.Mount))
	}
	return strings.Join(lines, "\n")
}

func formatZFSSnapshots(list []executors.ZFSSnapshot) string {
	lines := make([]string, 0, len(list))
	for _, s := range list {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%s", s.Name, s.Used, s.Refer, s.Created))
	}
	return strings.Join(lines, "\n")
}
