package whitelist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWhitelist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whitelist.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIsTrustedVendorExactMatch(t *testing.T) {
	path := writeWhitelist(t, `{"vendors":["Auditor@Example.com"],"domains":[]}`)
	s := New(path)

	assert.True(t, s.IsTrusted("auditor@example.com"))
	assert.True(t, s.IsTrusted("  AUDITOR@EXAMPLE.COM  "))
	assert.False(t, s.IsTrusted("other@example.com"))
}

func TestIsTrustedDomainMatch(t *testing.T) {
	path := writeWhitelist(t, `{"vendors":[],"domains":["trusted-motels.com"]}`)
	s := New(path)

	assert.True(t, s.IsTrusted("anyone@trusted-motels.com"))
	assert.False(t, s.IsTrusted("anyone@sub.trusted-motels.com"), "subdomains are not implied")
	assert.False(t, s.IsTrusted("anyone@nottrusted-motels.com.evil.com"))
	assert.False(t, s.IsTrusted("trusted-motels.com"), "a bare domain is not an address match")
}

func TestIsTrustedFailsClosed(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing.json"))
	assert.False(t, s.IsTrusted("anyone@anywhere.com"))
	assert.False(t, s.IsTrusted(""))
}

func TestIsTrustedInvalidJSONFailsClosed(t *testing.T) {
	path := writeWhitelist(t, `not json`)
	s := New(path)
	assert.False(t, s.IsTrusted("auditor@example.com"))
}

func TestReloadPicksUpChanges(t *testing.T) {
	path := writeWhitelist(t, `{"vendors":[],"domains":[]}`)
	s := New(path)
	assert.False(t, s.IsTrusted("auditor@example.com"))

	require.NoError(t, os.WriteFile(path, []byte(`{"vendors":["auditor@example.com"]}`), 0644))
	require.NoError(t, s.Reload())
	assert.True(t, s.IsTrusted("auditor@example.com"))
}

func TestReloadFailureClearsCache(t *testing.T) {
	path := writeWhitelist(t, `{"vendors":["auditor@example.com"]}`)
	s := New(path)
	assert.True(t, s.IsTrusted("auditor@example.com"))

	require.NoError(t, os.Remove(path))
	assert.Error(t, s.Reload())
	assert.False(t, s.IsTrusted("auditor@example.com"), "stale entries must not survive a failed reload")
}
