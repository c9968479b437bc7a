package artifact

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gtl92/gmail-svelkit/internal/logger"
)

func TestMintToken(t *testing.T) {
	token := MintToken("test@example.com")
	assert.Len(t, token, 64)
	assert.True(t, ValidToken(token))

	// Two mints for the same email must differ
	other := MintToken("test@example.com")
	assert.NotEqual(t, token, other)
}

func TestValidToken(t *testing.T) {
	assert.False(t, ValidToken(""))
	assert.False(t, ValidToken("short"))
	assert.False(t, ValidToken("../../../etc/passwd"))
	// Uppercase hex is rejected
	assert.False(t, ValidToken("ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789"))
	assert.True(t, ValidToken("abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789"))
}

func TestStoreLifecycle(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "reports"), logger.New())
	assert.NoError(t, err)

	token := MintToken("test@example.com")

	// Unknown token
	_, status, err := store.Read(token)
	assert.NoError(t, err)
	assert.Equal(t, StatusMissing, status)

	// Reserved token serves the placeholder
	assert.NoError(t, store.Reserve(token))
	html, status, err := store.Read(token)
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, status)
	assert.Contains(t, html, "refresh")

	// Finalized token serves the report
	assert.NoError(t, store.Finalize(token, "<html>final report</html>"))
	html, status, err = store.Read(token)
	assert.NoError(t, err)
	assert.Equal(t, StatusReady, status)
	assert.Equal(t, "<html>final report</html>", html)
}

func TestStoreReserveDoesNotClobber(t *testing.T) {
	store, err := NewStore(t.TempDir(), logger.New())
	assert.NoError(t, err)

	token := MintToken("test@example.com")
	assert.NoError(t, store.Reserve(token))
	assert.NoError(t, store.Finalize(token, "<html>done</html>"))

	// A late Reserve must not bring the placeholder back
	assert.NoError(t, store.Reserve(token))
	html, status, err := store.Read(token)
	assert.NoError(t, err)
	assert.Equal(t, StatusReady, status)
	assert.Equal(t, "<html>done</html>", html)
}

func TestStoreRejectsMalformedToken(t *testing.T) {
	store, err := NewStore(t.TempDir(), logger.New())
	assert.NoError(t, err)

	assert.ErrorIs(t, store.Reserve("not-a-token"), ErrBadToken)
	assert.ErrorIs(t, store.Finalize("not-a-token", "x"), ErrBadToken)
	_, _, err = store.Read("not-a-token")
	assert.ErrorIs(t, err, ErrBadToken)
}
