package executors

import (
	"fmt"
	"strings"
)

// StatResult is the outcome of StatPath: exactly one of File/Directory
// is true, or neither (the path does not exist or stat failed).
type StatResult struct {
	IsFile      bool
	IsDirectory bool
}

// Found reports whether stat located anything at all.
func (r StatResult) Found() bool { return r.IsFile || r.IsDirectory }

// StatPath runs `stat -c %F` on path and classifies the result (spec
// §4.4 stat_path). A nonzero exit (missing path, permission denied) is
// reported as "not found", never as an error.
func StatPath(r Runner, path string) (StatResult, error) {
	cmd := fmt.Sprintf("stat -c %%F -- %s", shellQuote(path))
	stdout, _, code, err := r.Run(cmd)
	if err != nil {
		return StatResult{}, err
	}
	if code != 0 {
		return StatResult{}, nil
	}

	kind := strings.ToLower(strings.TrimSpace(stdout))
	switch {
	case strings.Contains(kind, "directory"):
		return StatResult{IsDirectory: true}, nil
	case strings.Contains(kind, "regular") || strings.Contains(kind, "file"):
		return StatResult{IsFile: true}, nil
	default:
		return StatResult{}, nil
	}
}

// CatFile reads at most maxSize bytes of path via `head -c`. Truncated is
// true iff the returned byte length equals maxSize exactly (spec §4.4,
// §8 boundary behavior: N bytes truncates, N-1 does not).
func CatFile(r Runner, path string, maxSize int) (text string, truncated bool, err error) {
	cmd := fmt.Sprintf("head -c %d -- %s", maxSize, shellQuote(path))
	stdout, _, _, err := r.Run(cmd)
	if err != nil {
		return "", false, err
	}
	truncated = len(stdout) >= maxSize
	return stdout, truncated, nil
}

// LsDir returns a long listing of path (spec §4.4 ls_dir).
func LsDir(r Runner, path string) (string, error) {
	cmd := fmt.Sprintf("ls -la -- %s", shellQuote(path))
	stdout, _, _, err := r.Run(cmd)
	return stdout, err
}

// maxTreeEntries caps the find-based fallback when `tree` is absent on
// the remote (spec §4.4 "piped through a cap (e.g. first 100 entries)").
const maxTreeEntries = 100

// TreeDir lists path to maxDepth levels, preferring `tree`, falling back
// to a depth-bounded `find` when tree is not installed (spec §4.4,
// §8 boundary: max_depth=0 must still succeed and list the root level).
func TreeDir(r Runner, path string, maxDepth int) (string, error) {
	quoted := shellQuote(path)
	treeCmd := fmt.Sprintf("tree -L %d --noreport -- %s", depthForTree(maxDepth), quoted)
	stdout, _, code, err := r.Run(treeCmd)
	if err != nil {
		return "", err
	}
	if code == 0 {
		return stdout, nil
	}

	findCmd := fmt.Sprintf("find %s -maxdepth %d | head -n %d", quoted, depthForFind(maxDepth), maxTreeEntries)
	stdout, _, _, err = r.Run(findCmd)
	return stdout, err
}

// depthForTree maps spec's 0-based max_depth onto tree's 1-based -L
// (tree has no concept of "depth 0 = root only"; -L 1 lists the root's
// immediate children, the closest available approximation).
func depthForTree(maxDepth int) int {
	if maxDepth < 1 {
		return 1
	}
	return maxDepth
}

// depthForFind maps the same max_depth onto find's -maxdepth, which is
// natively 0-based (0 = the starting path itself), matching spec exactly.
func depthForFind(maxDepth int) int {
	if maxDepth < 0 {
		return 0
	}
	return maxDepth
}

// CommandResult is the output of RunCommand (spec §3 CommandResult):
// always populated, never raised for a nonzero exit.
type CommandResult struct {
	Stdout     string
	Stderr     string
	ReturnCode int
}

// RunCommand runs cmd in cwd with a remote `timeout` wrapper (spec §4.4
// run_command). cmd is the one intentional exception to shell-quoting
// (spec §9): it is itself a shell command supplied by the caller, not a
// literal token, so it is interpolated as-is.
func RunCommand(r Runner, cwd, cmd string, timeoutSeconds int) (CommandResult, error) {
	shell := fmt.Sprintf("cd %s && timeout %d %s", shellQuote(cwd), timeoutSeconds, cmd)
	stdout, stderr, code, err := r.Run(shell)
	if err != nil {
		return CommandResult{}, err
	}
	return CommandResult{Stdout: stdout, Stderr: stderr, ReturnCode: code}, nil
}
