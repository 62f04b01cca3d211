package dispatch

import (
	"fmt"
	"strings"

	"scout-gateway/internal/executors"
	"scout-gateway/internal/hostinfo"
	"scout-gateway/internal/middleware"
	"scout-gateway/internal/scouterr"
)

// Scout implements the single scout(target, query?, tree?) tool (spec
// §4.6). It never raises: every failure path returns a string beginning
// "Error: ".
func (d *Dispatcher) Scout(target, query string, tree bool) string {
	call := scoutCall(target, query, tree)
	result, err := d.chain.Run(call, func() (string, error) {
		return d.scoutInner(target, query, tree)
	})
	if err != nil {
		return "Error: " + err.Error()
	}
	return result
}

func scoutCall(target, query string, tree bool) middleware.Call {
	detail := fmt.Sprintf("scout(target=%q", target)
	if query != "" {
		detail += fmt.Sprintf(", query=%q", query)
	}
	if tree {
		detail += ", tree=true"
	}
	detail += ")"
	return middleware.Call{Kind: "tool", Label: "tool:scout", Detail: detail}
}

func (d *Dispatcher) scoutInner(targetStr, query string, tree bool) (string, error) {
	t, err := hostinfo.ParseTarget(targetStr)
	if err != nil {
		return "", wrap(scouterr.ErrInvalidTarget, "Invalid target %q", targetStr)
	}

	if t.Hosts {
		online := d.probeHosts()
		return formatHostsListing(d.hosts.All(), online), nil
	}

	h, err := d.resolveHost(t.Host)
	if err != nil {
		return "", err
	}

	sess, err := d.session(h)
	if err != nil {
		return "", err
	}

	if query != "" {
		res, err := executors.RunCommand(sess, t.Path, query, d.cfg.CommandTimeout)
		if err != nil {
			return "", wrap(scouterr.ErrReadFailed, "Command failed: %s", err.Error())
		}
		return formatCommandResult(res), nil
	}

	stat, err := executors.StatPath(sess, t.Path)
	if err != nil {
		return "", wrap(scouterr.ErrReadFailed, "Stat failed: %s", err.Error())
	}
	if !stat.Found() {
		return "", wrap(scouterr.ErrPathNotFound, "Path not found: %s", t.Path)
	}

	if stat.IsDirectory {
		if tree {
			text, err := executors.TreeDir(sess, t.Path, 3)
			if err != nil {
				return "", wrap(scouterr.ErrReadFailed, "Tree listing failed: %s", err.Error())
			}
			return text, nil
		}
		text, err := executors.LsDir(sess, t.Path)
		if err != nil {
			return "", wrap(scouterr.ErrReadFailed, "Directory listing failed: %s", err.Error())
		}
		return text, nil
	}

	text, truncated, err := executors.CatFile(sess, t.Path, d.cfg.MaxFileSize)
	if err != nil {
		return "", wrap(scouterr.ErrReadFailed, "Read failed: %s", err.Error())
	}
	if truncated {
		text += fmt.Sprintf("\n\n[truncated at %d bytes]", d.cfg.MaxFileSize)
	}
	return text, nil
}

func formatCommandResult(res executors.CommandResult) string {
	var b strings.Builder
	b.WriteString(res.Stdout)
	if res.Stderr != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[stderr] ")
		b.WriteString(res.Stderr)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("[exit code: %d]", res.ReturnCode))
	return b.String()
}
