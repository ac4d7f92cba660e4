package cli

import (
	"bytes"
	"testing"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrders(t *testing.T) {
	got, err := parseOrders([]string{"B0001=2", " B0002 = 1"})
	require.NoError(t, err)
	assert.Equal(t, []models.BookOrder{{BookID: "B0001", DisplayOrder: 2}, {BookID: "B0002", DisplayOrder: 1}}, got)

	_, err = parseOrders([]string{"B0001"})
	require.Error(t, err)
	_, err = parseOrders([]string{"B0001=first"})
	require.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Lev Tolstoy", "Anton Chekhov"}, splitList(" Lev Tolstoy ;; Anton Chekhov;", ";"))
	assert.Equal(t, []string{}, splitList("  ", ","))
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("0")
	require.Error(t, err)
	_, err = parseID("x")
	require.Error(t, err)
}

func TestPrintResult(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	require.NoError(t, printResult(cmd, apperr.Success("Book issued successfully"), nil))
	assert.Equal(t, "Book issued successfully\n", out.String())

	err := printResult(cmd, apperr.Conflict("No copies available"), nil)
	require.ErrorIs(t, err, ErrFailed)
	assert.Equal(t, "conflict: No copies available\n", errOut.String())
}

func TestOptFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("title", "", "")
	cmd.Flags().Int("copies", 1, "")
	require.NoError(t, cmd.Flags().Parse([]string{"--copies", "3"}))

	assert.Nil(t, optString(cmd, "title"))
	require.NotNil(t, optInt(cmd, "copies"))
	assert.Equal(t, 3, *optInt(cmd, "copies"))
}

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()
	for _, path := range [][]string{
		{"issue"}, {"return"}, {"extend"}, {"overdue"}, {"stats"}, {"worker"}, {"init-db"},
		{"books", "list"}, {"books", "update"}, {"customers", "add"}, {"authors", "delete"},
		{"exhibitions", "add-book"}, {"exhibitions", "reorder"}, {"covers", "upload"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
