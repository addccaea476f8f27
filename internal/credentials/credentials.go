// Package credentials resolves per-provider access credentials from process
// configuration. Resolution is a pure read performed once per tool
// invocation; a tool must not proceed past resolution if any required piece
// is absent.
package credentials

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/nimbuslab/gtools/internal/config"
	"github.com/nimbuslab/gtools/internal/toolerr"
)

type Kind string

const (
	KindMaps        Kind = "maps"
	KindSerpAPI     Kind = "serpapi"
	KindNews        Kind = "news"
	KindGoogleOAuth Kind = "google_oauth"
)

// Scopes requested during the one-time token acquisition. Listed here so the
// oauth2 config used for refresh matches what the stored token was granted.
var googleScopes = []string{
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/calendar",
}

// OAuthBundle is a complete Google OAuth credential set.
type OAuthBundle struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	RedirectURL  string
}

// Credential is either a single API key or an OAuth bundle, depending on the
// provider kind it was resolved for.
type Credential struct {
	Kind   Kind
	APIKey string
	OAuth  *OAuthBundle
}

// Resolve reads the credential for kind out of cfg. It performs no I/O and
// never mutates cfg. Incomplete credentials fail with a configuration error
// naming every missing variable.
func Resolve(cfg *config.Config, kind Kind) (*Credential, error) {
	switch kind {
	case KindMaps:
		if cfg.MapsAPIKey == "" {
			return nil, toolerr.Configf("GOOGLE_MAPS_API_KEY is not set")
		}
		return &Credential{Kind: kind, APIKey: cfg.MapsAPIKey}, nil

	case KindSerpAPI:
		if cfg.SerpAPIKey == "" {
			return nil, toolerr.Configf("SERPAPI_API_KEY is not set")
		}
		return &Credential{Kind: kind, APIKey: cfg.SerpAPIKey}, nil

	case KindNews:
		// Optional: an empty key is a valid resolution and callers skip the
		// news fetch rather than failing the invocation.
		return &Credential{Kind: kind, APIKey: cfg.NewsAPIKey}, nil

	case KindGoogleOAuth:
		var missing []string
		if cfg.GoogleClientID == "" {
			missing = append(missing, "GOOGLE_CLIENT_ID")
		}
		if cfg.GoogleClientSecret == "" {
			missing = append(missing, "GOOGLE_CLIENT_SECRET")
		}
		if cfg.GoogleAccessToken == "" {
			missing = append(missing, "GOOGLE_ACCESS_TOKEN")
		}
		if cfg.GoogleRefreshToken == "" {
			missing = append(missing, "GOOGLE_REFRESH_TOKEN")
		}
		if len(missing) > 0 {
			return nil, toolerr.Configf("incomplete Google OAuth credentials: %s not set", strings.Join(missing, ", "))
		}

		redirect := cfg.GoogleRedirectURL
		if redirect == "" {
			redirect = config.DefaultRedirectURL
		}

		return &Credential{
			Kind: kind,
			OAuth: &OAuthBundle{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				AccessToken:  cfg.GoogleAccessToken,
				RefreshToken: cfg.GoogleRefreshToken,
				RedirectURL:  redirect,
			},
		}, nil

	default:
		return nil, toolerr.Configf("unknown credential kind %q", kind)
	}
}

func (b *OAuthBundle) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     b.ClientID,
		ClientSecret: b.ClientSecret,
		RedirectURL:  b.RedirectURL,
		Scopes:       googleScopes,
		Endpoint:     google.Endpoint,
	}
}

// TokenSource returns a source that attaches the stored token and delegates
// refresh to the oauth2 library. The stored access token's expiry is unknown,
// so it is marked already expired; the source refreshes once up front and
// reuses the result for the life of the client.
func (b *OAuthBundle) TokenSource(ctx context.Context) oauth2.TokenSource {
	token := &oauth2.Token{
		AccessToken:  b.AccessToken,
		RefreshToken: b.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-time.Minute),
	}
	return b.oauthConfig().TokenSource(ctx, token)
}

// Client returns an HTTP client that authorizes every request with the
// bundle's token source.
func (b *OAuthBundle) Client(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, b.TokenSource(ctx))
}
