package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

const (
	// ClientSecretsFile is the Google API credentials.json downloaded from the
	// cloud console, placed in the state directory.
	ClientSecretsFile = "credentials.json"

	// TokenFile holds the access and refresh token obtained by the web flow.
	TokenFile = "token.json"

	// LocalhostAuthPort receives the OAuth redirect.
	LocalhostAuthPort = "6789"

	authTimeout = 5 * time.Minute
)

var ErrNoToken = errors.New("no saved token, run 'duewatch auth' first")

// CalendarScopes are the scopes the calendar mirror needs.
var CalendarScopes = []string{
	calendar.CalendarEventsScope,
	calendar.CalendarReadonlyScope,
}

// Flow wraps the OAuth configuration for one state directory.
type Flow struct {
	Dir string
	Log logrus.FieldLogger
}

func (f *Flow) TokenPath() string {
	return filepath.Join(f.Dir, TokenFile)
}

// Config reads the client secrets and pins localhost redirects to LocalhostAuthPort.
func (f *Flow) Config(scopes []string) (*oauth2.Config, error) {
	secrets := filepath.Join(f.Dir, ClientSecretsFile)
	b, err := os.ReadFile(secrets)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", secrets, err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = redirectURL(config.RedirectURL)
	return config, nil
}

func redirectURL(configured string) string {
	fallback := fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
	if configured == "" || configured == "urn:ietf:wg:oauth:2.0:oob" {
		return fallback
	}
	u, err := url.Parse(configured)
	if err != nil {
		return fallback
	}
	if u.Hostname() == "localhost" || u.Hostname() == "127.0.0.1" {
		u.Host = net.JoinHostPort(u.Hostname(), LocalhostAuthPort)
		return u.String()
	}
	return configured
}

// Client returns an HTTP client authorised with the saved token. The token is
// refreshed transparently and re-saved when it changes.
func (f *Flow) Client(ctx context.Context, scopes []string) (*http.Client, error) {
	config, err := f.Config(scopes)
	if err != nil {
		return nil, err
	}
	tok, err := tokenFromFile(f.TokenPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, err
	}

	src := oauth2.ReuseTokenSource(tok, config.TokenSource(ctx, tok))
	fresh, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if fresh.AccessToken != tok.AccessToken || fresh.RefreshToken != tok.RefreshToken {
		if err := saveToken(f.TokenPath(), fresh); err != nil {
			f.Log.WithError(err).Warn("could not save refreshed token")
		}
	}
	return oauth2.NewClient(ctx, src), nil
}

// Authorize runs the browser flow and saves the resulting token, replacing any existing one.
func (f *Flow) Authorize(ctx context.Context, scopes []string) error {
	config, err := f.Config(scopes)
	if err != nil {
		return err
	}
	tok, err := f.tokenFromWeb(ctx, config)
	if err != nil {
		return err
	}
	return saveToken(f.TokenPath(), tok)
}

func (f *Flow) tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", "localhost:"+LocalhostAuthPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				select {
				case errCh <- fmt.Errorf("authorization code not found in redirect URL"):
				default:
				}
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			select {
			case codeCh <- code:
			default:
			}
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case errCh <- fmt.Errorf("HTTP server error: %w", err):
			default:
			}
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open the following URL in your browser to authorize duewatch:\n%s\n", authURL)
	f.Log.WithField("redirect", config.RedirectURL).Info("waiting for authorization code")

	select {
	case code := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := config.Exchange(exchangeCtx, code)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("authorization timed out, please try again")
	}
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
