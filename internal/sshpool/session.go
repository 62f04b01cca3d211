package sshpool

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// Session wraps a single *ssh.Client, exposing the subset of behavior the
// pool and executors need: running a command to completion and checking
// whether the underlying transport has gone away.
type Session struct {
	client *ssh.Client
}

func dial(addr, user, identityFile string, timeout time.Duration, hostKeyCallback ssh.HostKeyCallback) (*Session, error) {
	auths, err := authMethods(identityFile)
	if err != nil {
		return nil, err
	}
	if hostKeyCallback == nil {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            auths,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, err
	}
	return &Session{client: client}, nil
}

func authMethods(identityFile string) ([]ssh.AuthMethod, error) {
	if identityFile == "" {
		return []ssh.AuthMethod{}, fmt.Errorf("no identity_file configured")
	}
	key, err := os.ReadFile(identityFile)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parsing identity file: %w", err)
	}
	return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
}

// IsStale reports whether the underlying transport has closed. It sends a
// no-op keepalive request rather than trusting only the error state left
// by the last command, matching the reap/detect duty spec §4.3 assigns
// the pool ("before returning a cached entry, if the underlying session
// reports closed, treat as a miss").
func (s *Session) IsStale() bool {
	if s.client == nil {
		return true
	}
	_, _, err := s.client.SendRequest("keepalive@scout-gateway", true, nil)
	return err != nil
}

// Close releases the underlying transport. Idempotent: closing twice is
// a harmless no-op error we discard.
func (s *Session) Close() {
	if s.client == nil {
		return
	}
	_ = s.client.Close()
}

// Run executes cmd in a fresh SSH session/channel over this connection's
// transport (the transport itself multiplexes channels, so concurrent
// Run calls against the same Session are safe — spec §5 "the SSH session
// multiplexes channels"). It never returns an error for a nonzero remote
// exit status; that is reported via the returned exit code.
func (s *Session) Run(cmd string) (stdout, stderr string, exitCode int, err error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return "", "", -1, fmt.Errorf("opening channel: %w", err)
	}
	defer sess.Close()

	var outBuf, errBuf bytes.Buffer
	sess.Stdout = &outBuf
	sess.Stderr = &errBuf

	runErr := sess.Run(cmd)
	exitCode = 0
	if runErr != nil {
		if exitErr, ok := runErr.(*ssh.ExitError); ok {
			exitCode = exitErr.ExitStatus()
		} else if _, ok := runErr.(*ssh.ExitMissingError); ok {
			exitCode = -1
		} else {
			return decode(outBuf.Bytes()), decode(errBuf.Bytes()), -1, fmt.Errorf("running command: %w", runErr)
		}
	}

	return decode(outBuf.Bytes()), decode(errBuf.Bytes()), exitCode, nil
}

// decode converts raw remote output to UTF-8 with lossy replacement of
// invalid sequences, per spec §4.4.
func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
