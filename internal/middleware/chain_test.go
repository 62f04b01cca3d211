package middleware

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"scout-gateway/internal/scouterr"
)

func newTestChain() *Chain {
	return New(zerolog.Nop(), NewStats())
}

func TestChainRunSuccessRecordsTiming(t *testing.T) {
	c := newTestChain()
	call := Call{Kind: "tool", Label: "tool:scout", Detail: "scout(target=dookie:/etc)"}

	result, err := c.Run(call, func() (string, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result != "ok" {
		t.Fatalf("result = %q, want ok", result)
	}

	timing, _ := c.Stats().GetStats()
	entry, ok := timing["tool:scout"]
	if !ok {
		t.Fatal("expected a timing entry for tool:scout")
	}
	if entry.Count != 1 {
		t.Fatalf("Count = %d, want 1", entry.Count)
	}
	if entry.TotalMs < 0 {
		t.Fatalf("TotalMs = %d, want >= 0", entry.TotalMs)
	}
}

func TestChainRunErrorIncrementsCounterExactlyOnce(t *testing.T) {
	c := newTestChain()
	call := Call{Kind: "resource", Label: "resource:scout://tootie/etc", Detail: "scout://tootie/etc"}

	_, err := c.Run(call, func() (string, error) {
		return "", scouterr.ErrUnknownHost
	})
	if err == nil {
		t.Fatal("expected the error to propagate")
	}

	_, errs := c.Stats().GetStats()
	if errs["UnknownHost"] != 1 {
		t.Fatalf("UnknownHost count = %d, want 1", errs["UnknownHost"])
	}
}

func TestChainErrorHandlingNeverSwallows(t *testing.T) {
	c := newTestChain()
	sentinel := errors.New("boom")
	call := Call{Kind: "tool", Label: "tool:scout", Detail: "scout(...)"}

	_, err := c.Run(call, func() (string, error) { return "", sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected the original error to propagate unwrapped through errors.Is, got %v", err)
	}
}

func TestChainResetStatsClearsBothCounters(t *testing.T) {
	c := newTestChain()
	call := Call{Kind: "tool", Label: "tool:scout", Detail: "scout(...)"}

	c.Run(call, func() (string, error) { return "ok", nil })
	c.Run(call, func() (string, error) { return "", scouterr.ErrConnectFailed })

	c.Stats().ResetStats()
	timing, errs := c.Stats().GetStats()
	if len(timing) != 0 || len(errs) != 0 {
		t.Fatalf("expected empty stats after reset, got timing=%v errors=%v", timing, errs)
	}
}

func TestChainErrorCallbackInvoked(t *testing.T) {
	var gotCall Call
	var gotErr error
	c := New(zerolog.Nop(), NewStats(), WithErrorCallback(func(call Call, err error) {
		gotCall = call
		gotErr = err
	}))

	call := Call{Kind: "tool", Label: "tool:scout", Detail: "scout(...)"}
	_, _ = c.Run(call, func() (string, error) { return "", scouterr.ErrPathNotFound })

	if gotErr == nil {
		t.Fatal("expected the error callback to fire")
	}
	if gotCall.Label != "tool:scout" {
		t.Fatalf("callback call.Label = %q, want tool:scout", gotCall.Label)
	}
}
