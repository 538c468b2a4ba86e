// File: internal/infra/identity/firebase.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"stratoguide/internal/domain"
	"stratoguide/internal/domain/model"
	"stratoguide/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.IdentityProvider = (*FirebaseAuth)(nil)

const DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// IDTokenClaims is the subset of the Firebase ID token we display.
type IDTokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// FirebaseAuth signs users in against the Identity Toolkit REST API and keeps
// the current user for observers.
type FirebaseAuth struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *zerolog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	current   *model.User
	observers map[int]func(*model.User)
	nextObs   int
}

func NewFirebaseAuth(apiKey, baseURL string, timeout time.Duration, logger *zerolog.Logger) (*FirebaseAuth, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("firebase: api key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	l := logger.With().Str("component", "identity").Logger()
	return &FirebaseAuth{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		log:       &l,
		now:       time.Now,
		observers: map[int]func(*model.User){},
	}, nil
}

type credentialsReq struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type authResp struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	ExpiresIn    string `json:"expiresIn"`
}

type errResp struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *FirebaseAuth) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	return f.authenticate(ctx, "accounts:signInWithPassword", email, password)
}

func (f *FirebaseAuth) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	return f.authenticate(ctx, "accounts:signUp", email, password)
}

func (f *FirebaseAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	had := f.current != nil
	f.current = nil
	f.mu.Unlock()
	if had {
		f.log.Info().Msg("signed out")
	}
	f.notify(nil)
	return nil
}

func (f *FirebaseAuth) Current() *model.User {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current == nil {
		return nil
	}
	u := *f.current
	return &u
}

// Subscribe calls fn with the current user right away and on every change.
func (f *FirebaseAuth) Subscribe(fn func(*model.User)) func() {
	f.mu.Lock()
	id := f.nextObs
	f.nextObs++
	f.observers[id] = fn
	f.mu.Unlock()

	fn(f.Current())

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.observers, id)
			f.mu.Unlock()
		})
	}
}

func (f *FirebaseAuth) authenticate(ctx context.Context, op, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidArgument)
	}

	body, err := json.Marshal(credentialsReq{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/%s?key=%s", f.baseURL, op, url.QueryEscape(f.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firebase %s: %w", op, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("firebase %s: read body: %w", op, err)
	}

	if resp.StatusCode/100 != 2 {
		var e errResp
		if json.Unmarshal(raw, &e) == nil && e.Error.Message != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnauthorized, e.Error.Message)
		}
		return nil, fmt.Errorf("firebase %s: status %d", op, resp.StatusCode)
	}

	var ar authResp
	if err := json.Unmarshal(raw, &ar); err != nil {
		return nil, fmt.Errorf("firebase %s: decode: %w", op, err)
	}
	u, err := f.userFromResponse(ar)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.current = u
	f.mu.Unlock()
	f.log.Info().Str("user_id", u.ID).Msg("signed in")
	f.notify(u)

	cp := *u
	return &cp, nil
}

func (f *FirebaseAuth) userFromResponse(ar authResp) (*model.User, error) {
	if ar.IDToken == "" {
		return nil, errors.New("firebase: response carried no id token")
	}
	claims, err := ParseIDToken(ar.IDToken)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:           firstNonEmpty(claims.UserID, claims.Subject, ar.LocalID),
		Email:        firstNonEmpty(claims.Email, ar.Email),
		IDToken:      ar.IDToken,
		RefreshToken: ar.RefreshToken,
		SignedInAt:   f.now(),
	}
	if claims.ExpiresAt != nil {
		u.ExpiresAt = claims.ExpiresAt.Time
	}
	return u, nil
}

// ParseIDToken reads the claims without verifying the signature. The token
// arrives straight from the provider over TLS and is only used for display.
func ParseIDToken(tok string) (*IDTokenClaims, error) {
	claims := &IDTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return nil, fmt.Errorf("firebase: parse id token: %w", err)
	}
	return claims, nil
}

// notify runs observers outside the lock so they may call back into f.
func (f *FirebaseAuth) notify(u *model.User) {
	f.mu.RLock()
	fns := make([]func(*model.User), 0, len(f.observers))
	for _, fn := range f.observers {
		fns = append(fns, fn)
	}
	f.mu.RUnlock()

	for _, fn := range fns {
		if u == nil {
			fn(nil)
			continue
		}
		cp := *u
		fn(&cp)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
