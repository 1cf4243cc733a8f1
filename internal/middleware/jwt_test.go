package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/priyanshu9046/SortMyScene/internal/utils"
)

const testSecret = "test-secret"

func runJWT(t *testing.T, authHeader string) (echo.Context, *httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured echo.Context
	handler := JWTAuth(testSecret)(func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	if captured != nil {
		c = captured
	}
	return c, rec, err
}

func TestJWTAuth(t *testing.T) {
	t.Run("valid token injects the user id", func(t *testing.T) {
		tok, err := utils.NewAccessToken(testSecret, 42, 5)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		c, rec, err := runJWT(t, "Bearer "+tok.Token)
		if err != nil {
			t.Fatalf("middleware returned error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		uid, ok := c.Get("user_id").(uint64)
		if !ok || uid != 42 {
			t.Fatalf("expected user_id 42 in context, got %v", c.Get("user_id"))
		}
	})

	t.Run("missing header", func(t *testing.T) {
		_, rec, err := runJWT(t, "")
		if err != nil {
			t.Fatalf("middleware returned error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, rec, err := runJWT(t, "Bearer not-a-jwt")
		if err != nil {
			t.Fatalf("middleware returned error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := utils.NewAccessToken("other-secret", 42, 5)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		_, rec, err := runJWT(t, "Bearer "+tok.Token)
		if err != nil {
			t.Fatalf("middleware returned error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestSubjectID(t *testing.T) {
	if id, ok := subjectID(jwt.MapClaims{"sub": float64(7)}); !ok || id != 7 {
		t.Fatalf("float64 sub: got %d, %v", id, ok)
	}
	if id, ok := subjectID(jwt.MapClaims{"sub": "19"}); !ok || id != 19 {
		t.Fatalf("string sub: got %d, %v", id, ok)
	}
	if _, ok := subjectID(jwt.MapClaims{"sub": "x"}); ok {
		t.Fatalf("non-numeric string sub must fail")
	}
	if _, ok := subjectID(jwt.MapClaims{}); ok {
		t.Fatalf("missing sub must fail")
	}
	if _, ok := subjectID(jwt.MapClaims{"sub": float64(-1)}); ok {
		t.Fatalf("negative sub must fail")
	}
}
