package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carbonwallet/leads-service/internal/core/domain"
)

type stubVerifier struct {
	principal domain.Principal
	err       error
	got       string
}

func (s *stubVerifier) Verify(token string) (domain.Principal, error) {
	s.got = token
	return s.principal, s.err
}

func runAuth(t *testing.T, v *stubVerifier, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(v)(func(c echo.Context) error {
		called = true
		p, ok := Principal(c)
		if !ok {
			t.Fatalf("principal not set")
		}
		if p.Subject != v.principal.Subject {
			t.Fatalf("expected subject %q, got %q", v.principal.Subject, p.Subject)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	v := &stubVerifier{principal: domain.Principal{Subject: "admin", Role: domain.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}}

	rec, called := runAuth(t, v, "Bearer abc.def.ghi")
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if v.got != "abc.def.ghi" {
		t.Fatalf("verifier got %q", v.got)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	v := &stubVerifier{principal: domain.Principal{Subject: "admin", Role: domain.RoleAdmin}}

	if _, called := runAuth(t, v, "bearer tok"); !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	cases := map[string]struct {
		header string
		err    error
	}{
		"missing header": {header: ""},
		"wrong scheme":   {header: "Token abc"},
		"no token":       {header: "Bearer "},
		"bad token":      {header: "Bearer abc", err: domain.ErrUnauthorized},
		"expired token":  {header: "Bearer abc", err: errors.Join(domain.ErrUnauthorized, errors.New("token is expired"))},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			v := &stubVerifier{err: tc.err}
			if tc.err == nil {
				v.err = errors.New("should not be called")
			}

			rec, called := runAuth(t, v, tc.header)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if rec.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Fatalf("expected WWW-Authenticate challenge")
			}
		})
	}
}
