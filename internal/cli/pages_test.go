package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazzarna/storefront/internal/platform/pagination"
)

func runPagesCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	pagesCurrent, pagesTotal, pagesCount, pagesPageSize = 1, 0, 0, pagination.DefaultPageSize

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"pages"}, args...))
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestPagesCmd_Use(t *testing.T) {
	assert.Equal(t, "pages", pagesCmd.Use)
	assert.Equal(t, "Print the pagination sequence for a page", pagesCmd.Short)
}

func TestPagesCmd_MiddlePage(t *testing.T) {
	out, err := runPagesCommand(t, "--current", "10", "--total", "20")

	require.NoError(t, err)
	assert.Contains(t, out, "Pages: 1 ... 9 [10] 11 ... 20")
	assert.Contains(t, out, "First: 1 | Prev: 9 | Next: 11 | Last: 20")
}

func TestPagesCmd_FirstPageDisablesBackwardNavigation(t *testing.T) {
	out, err := runPagesCommand(t, "--current", "1", "--total", "5")

	require.NoError(t, err)
	assert.Contains(t, out, "Pages: [1] 2 ... 5")
	assert.Contains(t, out, "First: - | Prev: - | Next: 2 | Last: 5")
}

func TestPagesCmd_TotalFromCount(t *testing.T) {
	out, err := runPagesCommand(t, "--current", "3", "--count", "25", "--page-size", "10")

	require.NoError(t, err)
	assert.Contains(t, out, "Pages: 1 2 [3]")
	assert.Contains(t, out, "Next: - | Last: -")
}

func TestPagesCmd_SinglePage(t *testing.T) {
	out, err := runPagesCommand(t, "--total", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "No pagination needed.")
}

func TestPagesCmd_RejectsOutOfRangeCurrent(t *testing.T) {
	_, err := runPagesCommand(t, "--current", "7", "--total", "5")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 1 and 5")
}
