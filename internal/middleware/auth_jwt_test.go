package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crowdfund/internal/domain"
)

var testTokenCfg = TokenConfig{
	Secret:   "test-secret",
	Issuer:   "crowdfund",
	Audience: "crowdfund-web",
	TTL:      time.Hour,
}

func TestSignAndParseToken(t *testing.T) {
	raw, err := SignToken(testTokenCfg, "user-1", domain.UserRoleNGO, "hi", time.Now())
	if err != nil {
		t.Fatalf("SignToken() error: %v", err)
	}
	claims, err := ParseToken(testTokenCfg, raw)
	if err != nil {
		t.Fatalf("ParseToken() error: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != domain.UserRoleNGO || claims.Locale != "hi" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	expired, _ := SignToken(testTokenCfg, "user-1", domain.UserRoleDonor, "", time.Now().Add(-2*time.Hour))
	otherSecret := testTokenCfg
	otherSecret.Secret = "other"
	forged, _ := SignToken(otherSecret, "user-1", domain.UserRoleAdmin, "", time.Now())
	otherAud := testTokenCfg
	otherAud.Audience = "someone-else"
	wrongAud, _ := SignToken(otherAud, "user-1", domain.UserRoleDonor, "", time.Now())

	for name, raw := range map[string]string{
		"expired":        expired,
		"bad signature":  forged,
		"wrong audience": wrongAud,
		"garbage":        "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseToken(testTokenCfg, raw); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAuthJWTAndRequireRole(t *testing.T) {
	var gotUser string
	var gotRole domain.UserRole
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := AuthJWT(testTokenCfg)(RequireRole(domain.UserRoleAdmin)(inner))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d", rec.Code)
	}

	donor, _ := SignToken(testTokenCfg, "donor-1", domain.UserRoleDonor, "", time.Now())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+donor)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("donor on admin route: status = %d", rec.Code)
	}

	admin, _ := SignToken(testTokenCfg, "admin-1", domain.UserRoleAdmin, "", time.Now())
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin: status = %d", rec.Code)
	}
	if gotUser != "admin-1" || gotRole != domain.UserRoleAdmin {
		t.Fatalf("context = %q/%q", gotUser, gotRole)
	}
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	var gotUser string
	h := OptionalAuth(testTokenCfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if gotUser != "" {
		t.Fatalf("anonymous user id = %q", gotUser)
	}

	raw, _ := SignToken(testTokenCfg, "donor-9", domain.UserRoleDonor, "", time.Now())
	req := httptest.NewRequest(http.MethodGet, "/live?access_token="+raw, nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotUser != "donor-9" {
		t.Fatalf("query token user id = %q", gotUser)
	}
}
