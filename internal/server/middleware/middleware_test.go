package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func serve(app *App, authHeader string, permission string) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(AppContextMiddleware(app))
	e.GET("/api/tree", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, AuthMiddleware, RequirePermission(permission))

	req := httptest.NewRequest(http.MethodGet, "/api/tree", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	app := &App{MasterAPIKey: "secret", MasterUserID: 1, MasterUserRole: "admin"}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic secret", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"master key", "Bearer secret", http.StatusOK},
		{"jwt without jwks", "Bearer eyJhbGciOiJIUzI1NiJ9.e30.sig", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, tt.header, "tree.view")
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestMasterKeyRequiresCompleteConfig(t *testing.T) {
	app := &App{MasterAPIKey: "secret"}
	if rec := serve(app, "Bearer secret", "tree.view"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestUserFromClaims(t *testing.T) {
	tests := []struct {
		name      string
		claims    jwt.MapClaims
		wantErr   bool
		wantID    int32
		wantPerms int
	}{
		{"string id", jwt.MapClaims{"id": "7", "permissions": []any{"tree.view"}}, false, 7, 1},
		{"numeric id", jwt.MapClaims{"id": float64(9)}, false, 9, 0},
		{"admin gets all", jwt.MapClaims{"id": "1", "role": "admin"}, false, 1, len(allPermissions)},
		{"bad id", jwt.MapClaims{"id": "x"}, true, 0, 0},
		{"missing id", jwt.MapClaims{}, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := userFromClaims(tt.claims)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.UserID != tt.wantID || len(user.Permissions) != tt.wantPerms {
				t.Fatalf("unexpected user %+v", user)
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	e := echo.New()
	handler := RequirePermission("tree.update")(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	tests := []struct {
		name string
		user *AppUser
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"missing permission", &AppUser{Permissions: []string{"tree.view"}}, http.StatusForbidden},
		{"allowed", &AppUser{Permissions: []string{"tree.update"}}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := &AppContext{e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec), &App{}, tt.user}
			if err := handler(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestAsyncEnabled(t *testing.T) {
	if (&App{}).AsyncEnabled() {
		t.Fatal("expected async imports to be disabled without dependencies")
	}
}
