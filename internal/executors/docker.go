package executors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContainerInfo is one row of DockerPS's output (spec §4.4 docker_ps).
type ContainerInfo struct {
	Name   string
	Image  string
	Status string
	Ports  string
}

// DockerPS lists running containers. A missing docker binary yields an
// empty slice, never an error (spec §4.4: "missing Docker yields []").
func DockerPS(r Runner) ([]ContainerInfo, error) {
	cmd := `docker ps --format '{{json .}}' 2>/dev/null`
	stdout, _, code, err := r.Run(cmd)
	if err != nil {
		return nil, err
	}
	if code != 0 || strings.TrimSpace(stdout) == "" {
		return []ContainerInfo{}, nil
	}

	var out []ContainerInfo
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		if line == "" {
			continue
		}
		var row struct {
			Names  string `json:"Names"`
			Image  string `json:"Image"`
			Status string `json:"Status"`
			Ports  string `json:"Ports"`
		}
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			continue
		}
		out = append(out, ContainerInfo{Name: row.Names, Image: row.Image, Status: row.Status, Ports: row.Ports})
	}
	if out == nil {
		out = []ContainerInfo{}
	}
	return out, nil
}

// DockerLogs tails container's logs. Exists is false when docker reports
// "No such container" (spec §4.4 docker_logs).
func DockerLogs(r Runner, container string, tail int, timestamps bool) (text string, exists bool, err error) {
	flags := fmt.Sprintf("--tail %d", tail)
	if timestamps {
		flags += " --timestamps"
	}
	cmd := fmt.Sprintf("docker logs %s %s 2>&1", flags, shellQuote(container))
	stdout, _, _, err := r.Run(cmd)
	if err != nil {
		return "", false, err
	}
	if strings.Contains(stdout, "No such container") {
		return "", false, nil
	}
	return stdout, true, nil
}

// ComposeProject is one row of ComposeLs's output (spec §4.4 compose_ls).
type ComposeProject struct {
	Name        string
	Status      string
	ConfigFiles string
}

// ComposeLs lists compose projects via `docker compose ls --format
// json`. A JSON-parse failure (plugin missing, older docker) is treated
// as "not available" and returns an empty slice rather than an error
// (spec §4.4 compose_ls).
func ComposeLs(r Runner) ([]ComposeProject, error) {
	cmd := `docker compose ls --format json 2>/dev/null`
	stdout, _, _, err := r.Run(cmd)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Name        string `json:"Name"`
		Status      string `json:"Status"`
		ConfigFiles string `json:"ConfigFiles"`
	}
	if err := json.Unmarshal([]byte(stdout), &rows); err != nil {
		return []ComposeProject{}, nil
	}

	out := make([]ComposeProject, 0, len(rows))
	for _, row := range rows {
		out = append(out, ComposeProject{Name: row.Name, Status: row.Status, ConfigFiles: row.ConfigFiles})
	}
	return out, nil
}

// composeConfigFiles resolves project's compose config file path(s) via
// `docker compose ls`, returning the first listed file.
func composeConfigFiles(r Runner, project string) (string, bool, error) {
	projects, err := ComposeLs(r)
	if err != nil {
		return "", false, err
	}
	for _, p := range projects {
		if p.Name == project {
			first := strings.Split(p.ConfigFiles, ",")[0]
			return strings.TrimSpace(first), true, nil
		}
	}
	return "", false, nil
}

// ComposeFile returns project's compose config file contents. found is
// false when the project is unknown (spec §4.4: "ResourceNotFound if
// project unknown" is the caller's responsibility to surface; this
// function just reports found/not-found).
func ComposeFile(r Runner, project string) (text string, found bool, err error) {
	path, found, err := composeConfigFiles(r, project)
	if err != nil || !found {
		return "", found, err
	}
	cmd := fmt.Sprintf("cat -- %s", shellQuote(path))
	stdout, _, code, err := r.Run(cmd)
	if err != nil {
		return "", true, err
	}
	if code != 0 {
		return "", false, nil
	}
	return stdout, true, nil
}

// ComposeLogs returns timestamped logs for every service of project.
func ComposeLogs(r Runner, project string, tail int) (text string, found bool, err error) {
	_, found, err = composeConfigFiles(r, project)
	if err != nil || !found {
		return "", found, err
	}
	cmd := fmt.Sprintf("docker compose -p %s logs --tail %d --timestamps 2>&1", shellQuote(project), tail)
	stdout, _, _, err := r.Run(cmd)
	return stdout, true, err
}

// checkBinaryAvailable reports whether name is on the remote PATH
// (`command -v`). SyslogRead (syslog.go) uses it to detect journalctl.
func checkBinaryAvailable(r Runner, name string) (bool, error) {
	cmd := fmt.Sprintf("command -v %s >/dev/null 2>&1", shellQuote(name))
	_, _, code, err := r.Run(cmd)
	if err != nil {
		return false, err
	}
	return code == 0, nil
}
