// Package youtube implements ports.Uploader against the YouTube Data API
// v3 over plain net/http. No Google API client or oauth2 library appears
// in any example repo's go.mod, so — the same way internal/obsrecorder
// hand-rolls the OBS WebSocket protocol rather than reaching for an
// unvetted client library — this package hand-rolls the small slice of
// OAuth2 refresh-token exchange and multipart upload it needs; resumable
// uploads are not implemented.
package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/saw4405/splat-replay/internal/apperr"
)

const tokenEndpoint = "https://oauth2.googleapis.com/token"

// Credentials is the persisted OAuth2 client the operator obtains once via
// Google's consent screen and saves to Config.Uploader.CredentialsPath
// (spec §4.L's "video-platform credentials").
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

// LoadCredentials reads and decodes a Credentials file.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, apperr.Wrap(apperr.KindConfiguration, "read YouTube credentials", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, apperr.Wrap(apperr.KindConfiguration, "parse YouTube credentials", err)
	}
	return creds, nil
}

// tokenSource exchanges a refresh token for short-lived access tokens and
// caches the result until shortly before it expires, so every API call
// doesn't re-authenticate.
type tokenSource struct {
	creds Credentials
	http  *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newTokenSource(creds Credentials, client *http.Client) *tokenSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &tokenSource{creds: creds, http: client}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a valid bearer token, refreshing it if the cached
// one has expired (with a 60-second safety margin).
func (t *tokenSource) accessToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Now().Before(t.expiresAt) {
		return t.token, nil
	}

	form := url.Values{
		"client_id":     {t.creds.ClientID},
		"client_secret": {t.creds.ClientSecret},
		"refresh_token": {t.creds.RefreshToken},
		"grant_type":    {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "build YouTube token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.http.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuthentication, "refresh YouTube access token", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apperr.New(apperr.KindAuthentication, "YouTube のトークン更新に失敗しました: "+resp.Status)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", apperr.Wrap(apperr.KindAuthentication, "decode YouTube token response", err)
	}
	t.token = tok.AccessToken
	t.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - 60*time.Second)
	return t.token, nil
}
