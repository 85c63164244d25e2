package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/glance/internal/fileops"
)

func TestExpandPathsWithMatch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.png", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	paths, err := expandPaths([]string{"/explicit"}, dir, "*.{jpg,png}")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/explicit",
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
	}, paths)
}

func TestExpandPathsWithoutMatch(t *testing.T) {
	paths, err := expandPaths([]string{"one", "two"}, "/does/not/matter", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, paths)
}

func TestExpandPathsMissingDir(t *testing.T) {
	_, err := expandPaths(nil, filepath.Join(t.TempDir(), "gone"), "*")
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	ok := fileops.Result{Op: "move", Succeeded: []string{"a", "b"}}
	assert.NoError(t, report(ok))

	failed := fileops.Result{
		Op:        "trash",
		Succeeded: []string{"a", "b"},
		Failures:  []fileops.ItemFailure{{Path: "c", Err: errors.New("permission denied")}},
	}
	err := report(failed)
	require.Error(t, err)
	assert.Equal(t, "trash: 2 succeeded, 1 failed", err.Error())
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
	}
	for _, tt := range tests {
		cmd := &cobra.Command{}
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetIn(strings.NewReader(tt.input))
		assert.Equal(t, tt.want, confirm(cmd, "Proceed?"), "input %q", tt.input)
		assert.Contains(t, out.String(), "Proceed? [y/N]")
	}
}
