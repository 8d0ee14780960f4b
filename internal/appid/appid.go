package appid

import (
	"context"
	"os"

	"github.com/fulmenhq/gofulmen/appidentity"
)

// Default is the identity the binary runs under unless an explicit identity
// file is configured.
var Default = appidentity.Identity{
	Vendor:      "catppuccin",
	BinaryName:  "catppuccin-api",
	EnvPrefix:   "CATPPUCCIN_",
	ConfigName:  "catppuccin-api",
	Description: "Read-only API serving Catppuccin ports, userstyles, categories and palettes",
}

// Namespace prefixes telemetry and structured log fields.
const Namespace = "catppuccin_api"

// Get returns the app identity. An explicit FULMEN_APP_IDENTITY_PATH stays
// authoritative and is resolved through gofulmen.
func Get(ctx context.Context) (*appidentity.Identity, error) {
	if os.Getenv(appidentity.EnvIdentityPath) != "" {
		return appidentity.Get(ctx)
	}
	identity := Default
	return &identity, nil
}
