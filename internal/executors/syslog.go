package executors

import (
	"fmt"
	"strings"
)

// SyslogRead returns the tail of the remote's system log, preferring
// journalctl and falling back to /var/log/syslog, matching the
// journalctl-then-syslog detection probe used elsewhere in this codebase's
// service-log tooling (spec §4.4 syslog_read).
func SyslogRead(r Runner, lines int) (text string, source string, err error) {
	if lines <= 0 {
		lines = 100
	}

	hasJournalctl, err := checkBinaryAvailable(r, "journalctl")
	if err != nil {
		return "", "none", err
	}
	if hasJournalctl {
		cmd := fmt.Sprintf("journalctl --no-pager -n %d 2>/dev/null", lines)
		stdout, _, code, err := r.Run(cmd)
		if err != nil {
			return "", "none", err
		}
		if code == 0 && strings.TrimSpace(stdout) != "" {
			return stdout, "journalctl", nil
		}
	}

	cmd := fmt.Sprintf("cat /var/log/syslog /var/log/messages 2>/dev/null | tail -n %d", lines)
	stdout, _, code, err := r.Run(cmd)
	if err != nil {
		return "", "none", err
	}
	if code == 0 && strings.TrimSpace(stdout) != "" {
		return stdout, "syslog", nil
	}

	return "", "none", nil
}
