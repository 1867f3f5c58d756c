package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dc-harden/pkg/model"
)

func TestEmitWritesHeaderAndIndentedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dc-harden.log")
	s := New(path)
	require.NoError(t, s.Init())
	defer s.Close()

	require.NoError(t, s.Emit("account_quota", model.SeverityWarning, []string{
		"quota written",
		"readback mismatch",
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "warning account_quota")
	assert.Equal(t, "  quota written", lines[1])
	assert.Equal(t, "  readback mismatch", lines[2])
}

func TestEmitAppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dc-harden.log")
	s := New(path)
	require.NoError(t, s.Init())
	require.NoError(t, s.Emit("subnets", model.SeverityInfo, []string{"created 10.1.0.0/24"}))
	require.NoError(t, s.Close())

	s2 := New(path)
	require.NoError(t, s2.Init())
	require.NoError(t, s2.Emit("subnets", model.SeverityInfo, []string{"skipped 10.1.0.0/24"}))
	require.NoError(t, s2.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "created 10.1.0.0/24")
	assert.Contains(t, string(data), "skipped 10.1.0.0/24")
}

func TestEmitBeforeInitFails(t *testing.T) {
	s := New("")
	err := s.Emit("subnets", model.SeverityInfo, nil)
	assert.Error(t, err)
}
