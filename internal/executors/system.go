package executors

// SystemSummary returns a short OS/load/memory/disk snapshot, the
// executor backing the supplemental H://system resource (SPEC_FULL.md
// §4). Adapted from the same usage/diagnose-system shell recipes this
// codebase's monitoring tools use, reshaped into one read-only report
// instead of several ad-hoc tool calls.
func SystemSummary(r Runner) (string, error) {
	cmd := `{
echo "== uname ==";
uname -a;
echo;
echo "== uptime/load ==";
uptime;
echo;
echo "== memory ==";
free -h 2>/dev/null;
echo;
echo "== disk ==";
df -h 2>/dev/null;
} 2>&1`
	stdout, _, _, err := r.Run(cmd)
	return stdout, err
}
