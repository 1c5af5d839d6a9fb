package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/pageza/vitalchat/backend/internal/types"
)

const oauthStateTTL = 10 * time.Minute

// GoogleUser is the identity returned by Google's userinfo endpoint.
type GoogleUser struct {
	ID            string
	Email         string
	Name          string
	VerifiedEmail bool
}

// GoogleProvider runs the authorization-code flow against Google.
type GoogleProvider struct {
	oauth        *oauth2.Config
	userinfoOpts []option.ClientOption
}

var _ IGoogleProvider = (*GoogleProvider)(nil)

// GoogleOption customises a GoogleProvider.
type GoogleOption func(*GoogleProvider)

// WithOAuthEndpoint overrides Google's authorization and token URLs.
func WithOAuthEndpoint(endpoint oauth2.Endpoint) GoogleOption {
	return func(p *GoogleProvider) { p.oauth.Endpoint = endpoint }
}

// WithUserinfoEndpoint overrides the base URL of the userinfo API.
func WithUserinfoEndpoint(url string) GoogleOption {
	return func(p *GoogleProvider) {
		p.userinfoOpts = append(p.userinfoOpts, option.WithEndpoint(url))
	}
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string, opts ...GoogleOption) *GoogleProvider {
	p := &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for the user's Google identity.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(p.oauth.Client(ctx, token))}, p.userinfoOpts...)
	svc, err := googleOAuth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	user := &GoogleUser{ID: info.Id, Email: info.Email, Name: info.Name}
	if info.VerifiedEmail != nil {
		user.VerifiedEmail = *info.VerifiedEmail
	}
	return user, nil
}

// StateSigner issues and checks the OAuth state parameter. The state is a
// short-lived signed token whose nonce must match the one kept in the
// browser's state cookie.
type StateSigner struct {
	secret []byte
	now    func() time.Time
}

func NewStateSigner(secret string) *StateSigner {
	return &StateSigner{secret: []byte(secret), now: time.Now}
}

// Issue returns a signed state and the nonce it carries.
func (s *StateSigner) Issue() (state, nonce string, err error) {
	nonce = uuid.NewString()
	now := s.now()
	claims := types.StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(oauthStateTTL)),
		},
		Nonce: nonce,
	}
	state, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign oauth state: %w", err)
	}
	return state, nonce, nil
}

// Verify checks the state signature, expiry and nonce.
func (s *StateSigner) Verify(state, nonce string) error {
	claims := &types.StateClaims{}
	token, err := jwt.ParseWithClaims(state, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: invalid oauth state", ErrValidation)
	}
	if nonce == "" || subtle.ConstantTimeCompare([]byte(claims.Nonce), []byte(nonce)) != 1 {
		return fmt.Errorf("%w: oauth state mismatch", ErrValidation)
	}
	return nil
}
