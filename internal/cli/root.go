// Package cli implements the bazzarnactl operator commands.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/bazzarna/storefront/internal/services"
)

// version is overridden at build time with -ldflags "-X".
var version = "dev"

// StoreAdminOpener connects to the configured backends and returns the store admin service
// together with a release func.
type StoreAdminOpener func(ctx context.Context) (services.StoreAdminService, func(), error)

var storeAdminOpener StoreAdminOpener

var rootCmd = &cobra.Command{
	Use:   "bazzarnactl",
	Short: "Operator tooling for the Bazzarna storefront",
	Long: `bazzarnactl runs administrative tasks against the storefront backends
configured through the same API_* environment as the HTTP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetStoreAdminOpener installs the opener used by delete-store.
func SetStoreAdminOpener(opener StoreAdminOpener) {
	storeAdminOpener = opener
}

// Execute runs the root command with ctx attached.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

var errStoreAdminUnavailable = errors.New("store admin service not configured")
