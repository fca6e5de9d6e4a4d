package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("{}"), 0644))
	}
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.json", "a.csv", "notes.txt", "rule-test.yaml", "nested/c.yaml")

	flat, err := CollectFiles(root, FileCollectionOptions{Extensions: RecordExtensions, ExcludeTest: true})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.csv"), filepath.Join(root, "b.json")}, flat)

	deep, err := CollectFiles(root, FileCollectionOptions{Recursive: true, Extensions: RecordExtensions})
	require.NoError(t, err)
	assert.Len(t, deep, 4)
	assert.Contains(t, deep, filepath.Join(root, "nested", "c.yaml"))
	assert.Contains(t, deep, filepath.Join(root, "rule-test.yaml"))

	single, err := CollectFiles(filepath.Join(root, "b.json"), FileCollectionOptions{Extensions: RecordExtensions})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b.json")}, single)

	none, err := CollectFiles(filepath.Join(root, "notes.txt"), FileCollectionOptions{Extensions: RecordExtensions})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = CollectFiles(filepath.Join(root, "absent"), FileCollectionOptions{})
	assert.Error(t, err)
}

func TestOpenInput(t *testing.T) {
	rc, err := OpenInput(StdinPath, strings.NewReader("glucose: 150"))
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "glucose: 150", string(data))

	_, err = OpenInput(filepath.Join(t.TempDir(), "absent.json"), nil)
	assert.ErrorContains(t, err, "failed to open")
}

func TestFileKinds(t *testing.T) {
	assert.True(t, IsCSV("records.CSV"))
	assert.False(t, IsCSV("records.json"))
	assert.True(t, IsTestFile("dir/glucose-test.yml"))
	assert.False(t, IsTestFile("dir/glucose.yaml"))
}
