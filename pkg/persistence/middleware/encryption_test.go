package middleware_test

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"testing"

	"github.com/aretw0/enlyst/pkg/adapters/memory"
	"github.com/aretw0/enlyst/pkg/persistence/middleware"
	"github.com/aretw0/enlyst/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func encrypted(t *testing.T, next ports.EventStore, cfg middleware.EncryptionConfig) ports.EventStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return mw(next)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	store := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	if err := store.Save(ctx, newEvent("ev-1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Underlying store only sees the envelope
	raw, err := underlying.Load(ctx, "ev-1")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if _, ok := raw.Output["headers"]; ok {
		t.Fatal("Expected output to be hidden")
	}
	if _, ok := raw.Output["__encrypted__"]; !ok {
		t.Fatal("Expected __encrypted__ field in output")
	}
	if raw.ProjectID != "proj_1" {
		t.Errorf("Expected project ID to stay readable, got %q", raw.ProjectID)
	}

	loaded, err := store.Load(ctx, "ev-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Output["projectId"] != "proj_1" {
		t.Errorf("Expected decrypted output, got %v", loaded.Output)
	}

	events, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 1 || events[0].Output["projectId"] != "proj_1" {
		t.Errorf("Expected one decrypted event, got %v", events)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	if err := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey}).Save(ctx, newEvent("ev-1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rotated := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	if _, err := rotated.Load(ctx, "ev-1"); err != nil {
		t.Fatalf("Load with fallback key failed: %v", err)
	}

	wrong := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey})
	if _, err := wrong.Load(ctx, "ev-1"); err == nil {
		t.Fatal("Expected decryption to fail without the old key")
	}
}

func TestEncryptionMiddleware_PlainEvent(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	if err := underlying.Save(ctx, newEvent("plain")); err != nil {
		t.Fatal(err)
	}

	store := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if _, err := store.Load(ctx, "plain"); !errors.Is(err, middleware.ErrMissingEnvelope) {
		t.Fatalf("Expected ErrMissingEnvelope, got %v", err)
	}
}

func TestEncryptionMiddleware_KeySize(t *testing.T) {
	if _, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")}); err == nil {
		t.Fatal("Expected error for short key")
	}
}

func TestChain(t *testing.T) {
	underlying := memory.NewStore()
	redact, err := middleware.NewRedactMiddleware(middleware.DefaultRedactPatterns)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err != nil {
		t.Fatal(err)
	}
	store := middleware.Chain(underlying, redact, enc)
	ctx := context.Background()

	if err := store.Save(ctx, newEvent("ev-1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := store.Load(ctx, "ev-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Output["headers"].(map[string]any)["authorization"] != middleware.Mask {
		t.Errorf("Expected redaction before encryption, got %v", loaded.Output["headers"])
	}
}
