package appid

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/gofulmen/appidentity"
)

func TestGet_DefaultIdentity(t *testing.T) {
	t.Setenv(appidentity.EnvIdentityPath, "")

	identity, err := Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if identity.BinaryName != "catppuccin-api" {
		t.Fatalf("unexpected BinaryName %q", identity.BinaryName)
	}
	if identity.EnvPrefix != "CATPPUCCIN_" {
		t.Fatalf("unexpected EnvPrefix %q", identity.EnvPrefix)
	}

	identity.BinaryName = "mutated"
	if Default.BinaryName != "catppuccin-api" {
		t.Fatalf("Get must return a copy of the default identity")
	}
}

func TestGet_EnvVarRemainsAuthoritative(t *testing.T) {
	appidentity.Reset()
	t.Cleanup(func() { appidentity.Reset() })

	missing := filepath.Join(t.TempDir(), "missing-app.yaml")
	t.Setenv(appidentity.EnvIdentityPath, missing)

	_, err := Get(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}

	var notFound *appidentity.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
}
