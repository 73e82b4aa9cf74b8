package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bazzarna/storefront/internal/services"
)

var (
	deleteStoreOwner string
	deleteStoreJSON  bool
)

var deleteStoreCmd = &cobra.Command{
	Use:   "delete-store",
	Short: "Delete a store and its owner",
	Long: `Removes the store owned by --owner together with its dependent rows,
deletes the owner's auth identity and publishes a store.deleted event when
events are enabled. Only the final store row deletion is fatal; other failed
steps are reported and skipped.`,
	RunE: runDeleteStore,
}

func init() {
	deleteStoreCmd.Flags().StringVarP(&deleteStoreOwner, "owner", "o", "", "owner uid of the store to delete")
	deleteStoreCmd.Flags().BoolVar(&deleteStoreJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(deleteStoreCmd)
}

func runDeleteStore(cmd *cobra.Command, _ []string) error {
	owner := strings.TrimSpace(deleteStoreOwner)
	if owner == "" {
		return errors.New("--owner is required")
	}
	if storeAdminOpener == nil {
		return errStoreAdminUnavailable
	}

	ctx := commandContext(cmd)
	svc, release, err := storeAdminOpener(ctx)
	if err != nil {
		return fmt.Errorf("open store admin: %w", err)
	}
	if release != nil {
		defer release()
	}

	if !deleteStoreJSON {
		cmd.Printf("Deleting store for owner %s...\n", owner)
	}
	result, err := svc.DeleteStore(ctx, owner)
	var deletionErr *services.StoreDeletionError
	if errors.As(err, &deletionErr) {
		result = deletionErr.Result
	} else if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}

	if deleteStoreJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return encErr
		}
	} else {
		printDeletion(cmd, result)
	}

	if deletionErr != nil {
		return fmt.Errorf("store deletion failed: %w", deletionErr.Err)
	}
	if !deleteStoreJSON {
		if result.StoreID != "" {
			cmd.Printf("Store %s deleted.\n", result.StoreID)
		} else {
			cmd.Println("No store found; owner cleanup completed.")
		}
	}
	return nil
}

func printDeletion(cmd *cobra.Command, result services.DeleteStoreResult) {
	cmd.Printf("Operation: %s\n", result.OperationID)
	for _, step := range result.Steps {
		switch {
		case !step.OK:
			cmd.Printf("  FAILED %s: %s\n", step.Name, step.Error)
		case step.Affected > 0:
			cmd.Printf("  ok     %s (%d rows)\n", step.Name, step.Affected)
		default:
			cmd.Printf("  ok     %s\n", step.Name)
		}
	}
}
