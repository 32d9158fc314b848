package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v57/github"
	nanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/oauth2"
)

// App JWT timing. GitHub rejects app tokens that live longer than ten
// minutes; the issued-at time is backdated for clock drift.
const (
	AppTokenTTL   = 9 * time.Minute
	AppClockDrift = 60 * time.Second
)

// AppConfig identifies a GitHub App installation.
type AppConfig struct {
	AppID          int64
	InstallationID int64
	PrivateKey     []byte // PEM encoded RSA key

	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string
}

// Validate checks that the configuration is complete.
func (c AppConfig) Validate() error {
	var missing []string
	if c.AppID == 0 {
		missing = append(missing, "app id")
	}
	if c.InstallationID == 0 {
		missing = append(missing, "installation id")
	}
	if len(c.PrivateKey) == 0 {
		missing = append(missing, "private key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncompleteApp, strings.Join(missing, ", "))
	}
	return nil
}

// AppClaims are the claims of a GitHub App JWT.
type AppClaims struct {
	jwt.RegisteredClaims
}

// GenerateAppJWT signs a short-lived RS256 JWT authenticating as the app.
func GenerateAppJWT(appID int64, key *rsa.PrivateKey, now time.Time) (string, error) {
	if key == nil {
		return "", ErrNoPrivateKey
	}

	tokenID, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	claims := AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    strconv.FormatInt(appID, 10),
			IssuedAt:  jwt.NewNumericDate(now.Add(-AppClockDrift)),
			ExpiresAt: jwt.NewNumericDate(now.Add(AppTokenTTL)),
			ID:        tokenID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
}

// ParseAppJWT verifies an app JWT against the public key and returns
// its claims.
func ParseAppJWT(tokenString string, pub *rsa.PublicKey) (*AppClaims, error) {
	claims := &AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return pub, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// appJWTSource mints a fresh app JWT on every call.
type appJWTSource struct {
	appID int64
	key   *rsa.PrivateKey
	now   func() time.Time
}

func (s *appJWTSource) Token() (*oauth2.Token, error) {
	now := s.now()
	signed, err := GenerateAppJWT(s.appID, s.key, now)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		Expiry:      now.Add(AppTokenTTL),
	}, nil
}

// installationSource exchanges app JWTs for installation tokens.
type installationSource struct {
	ctx            context.Context
	client         *github.Client
	installationID int64
}

func (s *installationSource) Token() (*oauth2.Token, error) {
	tok, _, err := s.client.Apps.CreateInstallationToken(s.ctx, s.installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("create installation token: %w", err)
	}
	return &oauth2.Token{
		AccessToken: tok.GetToken(),
		Expiry:      tok.GetExpiresAt().Time,
	}, nil
}

// NewAppTokenSource returns a token source yielding installation tokens
// for the app. Tokens are cached until shortly before they expire.
func NewAppTokenSource(ctx context.Context, cfg AppConfig) (oauth2.TokenSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}

	appSource := oauth2.ReuseTokenSource(nil, &appJWTSource{appID: cfg.AppID, key: key, now: time.Now})
	client := github.NewClient(&http.Client{
		Transport: &oauth2.Transport{Source: appSource},
	})
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse base URL: %w", err)
		}
		client.BaseURL = base
	}

	return oauth2.ReuseTokenSource(nil, &installationSource{
		ctx:            ctx,
		client:         client,
		installationID: cfg.InstallationID,
	}), nil
}

// StaticTokenSource returns a token source for a personal access token.
func StaticTokenSource(token string) (oauth2.TokenSource, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), nil
}
