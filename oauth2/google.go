package oauth2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the provider-scoped identity extracted from a completed
// exchange. Subject is the provider's stable subject id and is the only
// field callers should key accounts on.
type Profile struct {
	Subject string
	Email   string
	Name    string
}

// Exchanger seats the provider round trip (consent URL construction plus
// code-for-profile exchange) so the flow can be driven in tests without a
// real network hop.
type Exchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// GoogleExchanger exchanges an authorization code for a token against
// Google's endpoints and fetches the userinfo profile.
type GoogleExchanger struct {
	Config oauth2.Config

	// Overridable for tests; defaults to Google's v2 userinfo endpoint.
	UserInfoURL string
}

func NewGoogleExchanger(clientId string, clientSecret string, callbackUrl string) *GoogleExchanger {
	if clientId == "" {
		clientId = os.Getenv("WHISPR_GOOGLE_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("WHISPR_GOOGLE_CLIENT_SECRET")
	}
	if callbackUrl == "" {
		callbackUrl = os.Getenv("WHISPR_GOOGLE_CALLBACK_URL")
	}
	return &GoogleExchanger{
		Config: oauth2.Config{
			ClientID:     clientId,
			ClientSecret: clientSecret,
			RedirectURL:  callbackUrl,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		UserInfoURL: defaultUserInfoURL,
	}
}

func (g *GoogleExchanger) AuthCodeURL(state string) string {
	return g.Config.AuthCodeURL(state)
}

func (g *GoogleExchanger) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	data, err := g.fetchUserInfo(token)
	if err != nil {
		return nil, err
	}
	var userInfo struct {
		Id    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &userInfo); err != nil {
		return nil, fmt.Errorf("failed parsing user info: %w", err)
	}
	if userInfo.Id == "" {
		return nil, errors.New("user info has no subject id")
	}
	return &Profile{Subject: userInfo.Id, Email: userInfo.Email, Name: userInfo.Name}, nil
}

func (g *GoogleExchanger) fetchUserInfo(token *oauth2.Token) ([]byte, error) {
	response, err := http.Get(g.UserInfoURL + "?access_token=" + token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info endpoint returned %d", response.StatusCode)
	}
	contents, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading user info response: %w", err)
	}
	return contents, nil
}

// GoogleOAuth2 is the two-phase federated login flow: Begin redirects the
// client to the provider's consent screen, Complete resumes on the
// provider's callback and resolves the authorization code to a Profile.
// There is no automatic retry; on failure the user must re-initiate.
type GoogleOAuth2 struct {
	Exchanger Exchanger
}

func NewGoogleOAuth2(clientId string, clientSecret string, callbackUrl string) *GoogleOAuth2 {
	return &GoogleOAuth2{Exchanger: NewGoogleExchanger(clientId, clientSecret, callbackUrl)}
}

// Begin starts the flow: generates a random state value, stores it in a
// short-lived cookie and redirects the client to the consent URL.
func (g *GoogleOAuth2) Begin(w http.ResponseWriter, r *http.Request) {
	state := generateStateOauthCookie(w)
	http.Redirect(w, r, g.Exchanger.AuthCodeURL(state), http.StatusFound)
}

// Complete handles the provider's callback. It checks the callback state
// against the state cookie, clears the cookie, and exchanges the
// authorization code for a profile. Every failure is terminal.
func (g *GoogleOAuth2) Complete(w http.ResponseWriter, r *http.Request) (*Profile, error) {
	oauthState, err := r.Cookie(stateCookieName)
	if err != nil {
		return nil, errors.New("oauth state cookie missing")
	}
	clearStateOauthCookie(w)
	if r.FormValue("state") != oauthState.Value {
		return nil, fmt.Errorf("invalid oauth state: %q", r.FormValue("state"))
	}
	code := r.FormValue("code")
	if code == "" {
		// The provider redirects back without a code when consent is denied.
		return nil, errors.New("callback carries no authorization code")
	}
	return g.Exchanger.Exchange(r.Context(), code)
}
