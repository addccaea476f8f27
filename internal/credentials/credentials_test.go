package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuslab/gtools/internal/config"
	"github.com/nimbuslab/gtools/internal/toolerr"
)

func fullConfig() *config.Config {
	return &config.Config{
		MapsAPIKey:         "maps-key",
		SerpAPIKey:         "serp-key",
		NewsAPIKey:         "news-key",
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		GoogleAccessToken:  "access",
		GoogleRefreshToken: "refresh",
	}
}

func TestResolveAPIKeys(t *testing.T) {
	cfg := fullConfig()

	cred, err := Resolve(cfg, KindMaps)
	require.NoError(t, err)
	assert.Equal(t, "maps-key", cred.APIKey)

	cred, err = Resolve(cfg, KindSerpAPI)
	require.NoError(t, err)
	assert.Equal(t, "serp-key", cred.APIKey)
}

func TestResolveMissingAPIKey(t *testing.T) {
	_, err := Resolve(&config.Config{}, KindMaps)
	require.Error(t, err)
	assert.Equal(t, toolerr.KindConfiguration, toolerr.KindOf(err))
	assert.Contains(t, err.Error(), "GOOGLE_MAPS_API_KEY")

	_, err = Resolve(&config.Config{}, KindSerpAPI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERPAPI_API_KEY")
}

func TestResolveNewsKeyIsOptional(t *testing.T) {
	cred, err := Resolve(&config.Config{}, KindNews)
	require.NoError(t, err)
	assert.Empty(t, cred.APIKey)
}

func TestResolveOAuth(t *testing.T) {
	cred, err := Resolve(fullConfig(), KindGoogleOAuth)
	require.NoError(t, err)
	require.NotNil(t, cred.OAuth)
	assert.Equal(t, "client-id", cred.OAuth.ClientID)
	assert.Equal(t, "refresh", cred.OAuth.RefreshToken)
	assert.Equal(t, config.DefaultRedirectURL, cred.OAuth.RedirectURL)
}

func TestResolveOAuthNamesEveryMissingVariable(t *testing.T) {
	cfg := fullConfig()
	cfg.GoogleClientSecret = ""
	cfg.GoogleRefreshToken = ""

	_, err := Resolve(cfg, KindGoogleOAuth)
	require.Error(t, err)
	assert.Equal(t, toolerr.KindConfiguration, toolerr.KindOf(err))
	assert.Contains(t, err.Error(), "GOOGLE_CLIENT_SECRET")
	assert.Contains(t, err.Error(), "GOOGLE_REFRESH_TOKEN")
	assert.NotContains(t, err.Error(), "GOOGLE_CLIENT_ID")
}

func TestResolveOAuthKeepsExplicitRedirect(t *testing.T) {
	cfg := fullConfig()
	cfg.GoogleRedirectURL = "http://localhost:9999/callback"

	cred, err := Resolve(cfg, KindGoogleOAuth)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/callback", cred.OAuth.RedirectURL)
}

func TestResolveUnknownKind(t *testing.T) {
	_, err := Resolve(fullConfig(), Kind("nope"))
	require.Error(t, err)
	assert.Equal(t, toolerr.KindConfiguration, toolerr.KindOf(err))
}
