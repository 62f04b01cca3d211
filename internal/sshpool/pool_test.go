package sshpool

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"scout-gateway/internal/hostinfo"
	"scout-gateway/internal/sshpool/sshpooltest"
)

// newTestHost starts a fake SSH server and writes a matching private key
// to a temp file, returning a Host configured to reach it.
func newTestHost(t *testing.T, name string) (hostinfo.Host, *sshpooltest.Server) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}

	srv, err := sshpooltest.New(signer.PublicKey())
	if err != nil {
		t.Fatalf("starting fake ssh server: %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	pkcs8, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		t.Fatalf("marshaling key: %v", err)
	}
	block := &pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}
	keyPath := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("writing key: %v", err)
	}
	_ = pub

	host, portStr, _ := net.SplitHostPort(srv.Addr())
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parsing port: %v", err)
	}

	return hostinfo.Host{
		Name:         name,
		Hostname:     host,
		Port:         port,
		User:         "test",
		IdentityFile: keyPath,
	}, srv
}

func TestPoolGetReturnsLiveSession(t *testing.T) {
	host, _ := newTestHost(t, "dookie")
	p := New()
	defer p.CloseAll()

	sess, err := p.Get(host)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.IsStale() {
		t.Fatal("freshly returned session reported stale")
	}
	if p.Size() != 1 {
		t.Fatalf("Size = %d, want 1", p.Size())
	}
}

func TestPoolGetCachesEntry(t *testing.T) {
	host, _ := newTestHost(t, "dookie")
	p := New()
	defer p.CloseAll()

	first, err := p.Get(host)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := p.Get(host)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first != second {
		t.Fatal("expected the same cached session on repeated Get")
	}
	if p.Size() != 1 {
		t.Fatalf("Size = %d, want 1 (at most one live entry per host)", p.Size())
	}
}

func TestPoolRemoveIsIdempotent(t *testing.T) {
	host, _ := newTestHost(t, "dookie")
	p := New()
	defer p.CloseAll()

	if _, err := p.Get(host); err != nil {
		t.Fatalf("Get: %v", err)
	}
	p.Remove(host.Name)
	p.Remove(host.Name)
	if p.Size() != 0 {
		t.Fatalf("Size = %d, want 0 after double remove", p.Size())
	}
}

func TestPoolCloseAllEmptiesAndStopsReaper(t *testing.T) {
	hostA, _ := newTestHost(t, "dookie")
	hostB, _ := newTestHost(t, "tootie")
	p := New()

	if _, err := p.Get(hostA); err != nil {
		t.Fatalf("Get a: %v", err)
	}
	if _, err := p.Get(hostB); err != nil {
		t.Fatalf("Get b: %v", err)
	}
	p.CloseAll()

	if p.Size() != 0 {
		t.Fatalf("Size = %d, want 0 after CloseAll", p.Size())
	}
	if p.reaperRunning {
		t.Fatal("reaper still marked running after CloseAll")
	}
}

func TestPoolOneHostPerName(t *testing.T) {
	host, _ := newTestHost(t, "dookie")
	p := New()
	defer p.CloseAll()

	for i := 0; i < 5; i++ {
		if _, err := p.Get(host); err != nil {
			t.Fatalf("Get #%d: %v", i, err)
		}
	}
	if p.Size() != 1 {
		t.Fatalf("Size = %d, want 1", p.Size())
	}
}

func TestPoolMaxHostsRejectsOverflow(t *testing.T) {
	hostA, _ := newTestHost(t, "dookie")
	hostB, _ := newTestHost(t, "tootie")
	p := New(WithMaxHosts(1))
	defer p.CloseAll()

	if _, err := p.Get(hostA); err != nil {
		t.Fatalf("Get a: %v", err)
	}
	if _, err := p.Get(hostB); err == nil {
		t.Fatal("expected pool-full error on second host past MaxHosts=1")
	}
}

func TestPoolIdleReapEmptiesPool(t *testing.T) {
	host, _ := newTestHost(t, "dookie")
	p := New(WithIdleTimeout(1 * time.Second))
	defer p.CloseAll()

	if _, err := p.Get(host); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Size() != 1 {
		t.Fatalf("Size = %d, want 1 before reap", p.Size())
	}

	time.Sleep(1500 * time.Millisecond)

	if p.Size() != 0 {
		t.Fatalf("Size = %d, want 0 after idle reap", p.Size())
	}
}

func TestPoolGetWithRetrySurfacesSecondFailureAfterServerGone(t *testing.T) {
	host, srv := newTestHost(t, "dookie")
	p := New()
	defer p.CloseAll()

	if _, err := p.Get(host); err != nil {
		t.Fatalf("initial Get: %v", err)
	}

	// Kill the server out from under the cached entry; GetWithRetry must
	// detect the stale session, remove it, and fail (no server left to
	// retry against) without panicking.
	srv.Close()
	time.Sleep(50 * time.Millisecond)

	if _, err := p.GetWithRetry(host); err == nil {
		t.Fatal("expected GetWithRetry to surface the second failure once the server is gone")
	}
}

func TestSessionRun(t *testing.T) {
	host, _ := newTestHost(t, "dookie")
	p := New()
	defer p.CloseAll()

	sess, err := p.Get(host)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	stdout, _, code, err := sess.Run("echo hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if stdout != "hello\n" {
		t.Fatalf("stdout = %q, want %q", stdout, "hello\n")
	}
}

func TestSessionRunNonzeroExit(t *testing.T) {
	host, _ := newTestHost(t, "dookie")
	p := New()
	defer p.CloseAll()

	sess, err := p.Get(host)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, _, code, err := sess.Run("exit 7")
	if err != nil {
		t.Fatalf("Run should not error on nonzero exit: %v", err)
	}
	if code != 7 {
		t.Fatalf("exit code = %d, want 7", code)
	}
}
