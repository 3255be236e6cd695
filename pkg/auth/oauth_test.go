package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrisonrobin/duewatch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const secrets = `{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`

func TestRedirectURL(t *testing.T) {
	assert.Equal(t, "http://localhost:6789/oauth2callback", redirectURL(""))
	assert.Equal(t, "http://localhost:6789/oauth2callback", redirectURL("urn:ietf:wg:oauth:2.0:oob"))
	assert.Equal(t, "http://localhost:6789", redirectURL("http://localhost"))
	assert.Equal(t, "http://127.0.0.1:6789/cb", redirectURL("http://127.0.0.1:9999/cb"))
	assert.Equal(t, "https://example.com/cb", redirectURL("https://example.com/cb"))
}

func TestConfigReadsSecrets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClientSecretsFile), []byte(secrets), 0600))

	f := &Flow{Dir: dir, Log: logger.Discard()}
	cfg, err := f.Config(CalendarScopes)
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, "http://localhost:6789", cfg.RedirectURL)
}

func TestClientWithoutTokenFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClientSecretsFile), []byte(secrets), 0600))

	f := &Flow{Dir: dir, Log: logger.Discard()}
	_, err := f.Client(context.Background(), CalendarScopes)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestClientWithValidToken(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClientSecretsFile), []byte(secrets), 0600))
	tok := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
	require.NoError(t, saveToken(filepath.Join(dir, TokenFile), tok))

	f := &Flow{Dir: dir, Log: logger.Discard()}
	client, err := f.Client(context.Background(), CalendarScopes)
	require.NoError(t, err)
	assert.NotNil(t, client)

	info, err := os.Stat(filepath.Join(dir, TokenFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
