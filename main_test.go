package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDocument(t *testing.T, path string, people family.People) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, storage.Export(f, people))
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestMergeAndVerifyCommands(t *testing.T) {
	t.Setenv("FAMILYTREE_LOG_LEVEL", "error")
	t.Setenv("FAMILYTREE_DATA_DIR", t.TempDir())
	dir := t.TempDir()

	basePath := filepath.Join(dir, "base.json")
	writeDocument(t, basePath, family.People{
		"p1": {ID: "p1", Name: "Base", Gender: family.Male, ChildrenIDs: []family.ID{}},
	})
	incomingPath := filepath.Join(dir, "incoming.json")
	writeDocument(t, incomingPath, family.People{
		"p1": {ID: "p1", Name: "Father", Gender: family.Male, ChildrenIDs: []family.ID{"p2"}},
		"p2": {ID: "p2", Name: "Daughter", Gender: family.Female, FatherID: "p1", ChildrenIDs: []family.ID{}},
		"p3": {ID: "p3", Name: "Stray", Gender: family.Male, FatherID: "p9", ChildrenIDs: []family.ID{}},
	})
	outPath := filepath.Join(dir, "merged.json")

	_, stderr, err := execute(t, "merge", "--base", basePath, "--incoming", incomingPath, "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "merged 1 + 3 people into 4,")
	assert.Contains(t, stderr, "1 unresolved")

	f, err := os.Open(outPath)
	require.NoError(t, err)
	merged, err := storage.Import(f)
	f.Close()
	require.NoError(t, err)
	require.Len(t, merged, 4)
	assert.Equal(t, "Base", merged["p1"].Name)
	assert.Equal(t, family.ID("p2"), merged["p3"].FatherID)
	assert.Equal(t, []family.ID{"p3"}, merged["p2"].ChildrenIDs)
	assert.Empty(t, merged["p4"].FatherID)

	stdout, _, err := execute(t, "verify", outPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "4 people, 0 violations")

	brokenPath := filepath.Join(dir, "broken.json")
	writeDocument(t, brokenPath, family.People{
		"p1": {ID: "p1", Name: "A", Gender: family.Male, ChildrenIDs: []family.ID{"p2"}},
		"p2": {ID: "p2", Name: "B", Gender: family.Female, ChildrenIDs: []family.ID{}},
	})
	stdout, _, err = execute(t, "verify", brokenPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 people, 1 violations")

	_, _, err = execute(t, "verify", "--strict", brokenPath)
	assert.Error(t, err)
}
