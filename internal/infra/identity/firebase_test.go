package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stratoguide/internal/domain"
	"stratoguide/internal/domain/model"
	"stratoguide/internal/infra/logging"
)

func mintIDToken(t *testing.T, uid, email string, exp time.Time) string {
	t.Helper()
	claims := IDTokenClaims{
		UserID: uid,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

// fakeToolkit mimics the two Identity Toolkit endpoints.
type fakeToolkit struct {
	mu    sync.Mutex
	users map[string]string // email -> password
	exp   time.Time
	paths []string
}

func (f *fakeToolkit) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.paths = append(f.paths, r.URL.Path)

		if r.URL.Query().Get("key") != "api-key" {
			writeErr(w, http.StatusBadRequest, "API_KEY_INVALID")
			return
		}
		var req credentialsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.ReturnSecureToken {
			writeErr(w, http.StatusBadRequest, "INVALID_REQUEST")
			return
		}

		switch r.URL.Path {
		case "/v1/accounts:signUp":
			if _, ok := f.users[req.Email]; ok {
				writeErr(w, http.StatusBadRequest, "EMAIL_EXISTS")
				return
			}
			f.users[req.Email] = req.Password
		case "/v1/accounts:signInWithPassword":
			pw, ok := f.users[req.Email]
			if !ok {
				writeErr(w, http.StatusBadRequest, "EMAIL_NOT_FOUND")
				return
			}
			if pw != req.Password {
				writeErr(w, http.StatusBadRequest, "INVALID_PASSWORD")
				return
			}
		default:
			http.NotFound(w, r)
			return
		}

		uid := "uid-" + req.Email
		_ = json.NewEncoder(w).Encode(authResp{
			IDToken:      mintIDToken(t, uid, req.Email, f.exp),
			RefreshToken: "refresh",
			LocalID:      uid,
			Email:        req.Email,
			ExpiresIn:    "3600",
		})
	})
}

func (f *fakeToolkit) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	var e errResp
	e.Error.Code = status
	e.Error.Message = msg
	_ = json.NewEncoder(w).Encode(e)
}

func newAuth(t *testing.T) (*FirebaseAuth, *fakeToolkit) {
	t.Helper()
	fk := &fakeToolkit{users: map[string]string{"ada@example.com": "s3cret"}, exp: time.Now().Add(time.Hour).Truncate(time.Second)}
	srv := httptest.NewServer(fk.handler(t))
	t.Cleanup(srv.Close)

	fa, err := NewFirebaseAuth("api-key", srv.URL+"/v1/", time.Second, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return fa, fk
}

func TestFirebase_SignInReadsClaims(t *testing.T) {
	fa, fk := newAuth(t)

	u, err := fa.SignIn(context.Background(), "ada@example.com", "s3cret")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if u.ID != "uid-ada@example.com" || u.Email != "ada@example.com" {
		t.Fatalf("user = %+v", u)
	}
	if !u.ExpiresAt.Equal(fk.exp) {
		t.Fatalf("expires = %v, want %v", u.ExpiresAt, fk.exp)
	}
	if u.RefreshToken != "refresh" || u.IDToken == "" {
		t.Fatalf("tokens not kept: %+v", u)
	}
	if cur := fa.Current(); cur == nil || cur.ID != u.ID {
		t.Fatalf("current = %+v", cur)
	}
}

func TestFirebase_ProviderErrors(t *testing.T) {
	fa, _ := newAuth(t)
	ctx := context.Background()

	cases := []struct {
		name, email, password, msg string
		signUp                     bool
	}{
		{"wrong password", "ada@example.com", "nope", "INVALID_PASSWORD", false},
		{"unknown email", "bob@example.com", "x", "EMAIL_NOT_FOUND", false},
		{"duplicate sign up", "ada@example.com", "x", "EMAIL_EXISTS", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var err error
			if tc.signUp {
				_, err = fa.SignUp(ctx, tc.email, tc.password)
			} else {
				_, err = fa.SignIn(ctx, tc.email, tc.password)
			}
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("want ErrUnauthorized, got %v", err)
			}
			if got := err.Error(); got != domain.ErrUnauthorized.Error()+": "+tc.msg {
				t.Fatalf("error = %q", got)
			}
			if fa.Current() != nil {
				t.Fatal("failed sign in must not set a user")
			}
		})
	}
}

func TestFirebase_MissingCredentials(t *testing.T) {
	fa, fk := newAuth(t)
	if _, err := fa.SignIn(context.Background(), " ", "x"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if len(fk.calls()) != 0 {
		t.Fatal("no request expected")
	}
}

func TestFirebase_SignUpThenSignIn(t *testing.T) {
	fa, fk := newAuth(t)
	ctx := context.Background()

	if _, err := fa.SignUp(ctx, "new@example.com", "pw123456"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := fa.SignIn(ctx, "new@example.com", "pw123456"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	want := []string{"/v1/accounts:signUp", "/v1/accounts:signInWithPassword"}
	got := fk.calls()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("paths = %v", got)
	}
}

func TestFirebase_Observers(t *testing.T) {
	fa, _ := newAuth(t)
	ctx := context.Background()

	var seen []*model.User
	unsub := fa.Subscribe(func(u *model.User) { seen = append(seen, u) })

	if _, err := fa.SignIn(ctx, "ada@example.com", "s3cret"); err != nil {
		t.Fatal(err)
	}
	if err := fa.SignOut(ctx); err != nil {
		t.Fatal(err)
	}
	unsub()
	unsub()
	if _, err := fa.SignIn(ctx, "ada@example.com", "s3cret"); err != nil {
		t.Fatal(err)
	}

	// initial nil, signed in, signed out; nothing after unsubscribe
	if len(seen) != 3 {
		t.Fatalf("observer calls = %d", len(seen))
	}
	if seen[0] != nil || seen[1] == nil || seen[1].Email != "ada@example.com" || seen[2] != nil {
		t.Fatalf("observed = %+v", seen)
	}
	if fa.Current() == nil {
		t.Fatal("want signed in")
	}
}

func TestParseIDToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	c, err := ParseIDToken(mintIDToken(t, "u1", "u1@example.com", exp))
	if err != nil {
		t.Fatal(err)
	}
	if c.UserID != "u1" || c.Email != "u1@example.com" || !c.ExpiresAt.Time.Equal(exp) {
		t.Fatalf("claims = %+v", c)
	}
	if _, err := ParseIDToken("not-a-token"); err == nil {
		t.Fatal("want error for garbage token")
	}
}

func TestNewFirebaseAuth_RequiresKey(t *testing.T) {
	if _, err := NewFirebaseAuth("", "", 0, logging.Nop()); err == nil {
		t.Fatal("want error")
	}
}
