package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bazzarna/storefront/internal/platform/pagination"
)

var (
	pagesCurrent  int
	pagesTotal    int
	pagesCount    int
	pagesPageSize int
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Print the pagination sequence for a page",
	Long: `Prints the page links the storefront renders for the current page.
The total can be given directly with --total or derived from --count and --page-size.`,
	RunE: runPages,
}

func init() {
	pagesCmd.Flags().IntVarP(&pagesCurrent, "current", "c", 1, "current page (1-based)")
	pagesCmd.Flags().IntVarP(&pagesTotal, "total", "t", 0, "total number of pages")
	pagesCmd.Flags().IntVar(&pagesCount, "count", 0, "total number of items, used when --total is not set")
	pagesCmd.Flags().IntVar(&pagesPageSize, "page-size", pagination.DefaultPageSize, "items per page, used with --count")
	rootCmd.AddCommand(pagesCmd)
}

func runPages(cmd *cobra.Command, _ []string) error {
	total := pagesTotal
	if total == 0 && pagesCount > 0 {
		if pagesPageSize <= 0 {
			return errors.New("--page-size must be positive")
		}
		total = pagination.TotalPages(pagesCount, pagesPageSize)
	}
	if total < 0 {
		return errors.New("--total must not be negative")
	}
	if total <= 1 {
		cmd.Println("No pagination needed.")
		return nil
	}
	if pagesCurrent < 1 || pagesCurrent > total {
		return fmt.Errorf("--current must be between 1 and %d", total)
	}

	items := pagination.ComputePageSequence(pagesCurrent, total)
	rendered := make([]string, 0, len(items))
	for _, item := range items {
		if !item.Ellipsis && item.Page == pagesCurrent {
			rendered = append(rendered, "["+item.String()+"]")
			continue
		}
		rendered = append(rendered, item.String())
	}
	cmd.Printf("Pages: %s\n", strings.Join(rendered, " "))

	nav := pagination.Navigation(pagesCurrent, total)
	cmd.Printf("First: %s | Prev: %s | Next: %s | Last: %s\n",
		navLabel(nav.First), navLabel(nav.Prev), navLabel(nav.Next), navLabel(nav.Last))
	return nil
}

func navLabel(target pagination.NavTarget) string {
	if target.Disabled {
		return "-"
	}
	return strconv.Itoa(target.Page)
}
