package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testEmail     = "ana@example.com"
	testIssuer    = "inventario-ledger-test"
	testExpMin    = 60
)

// whoami responde la identidad que dejaron los middlewares.
func whoami(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"user_id": apphttp.GetUserID(c),
		"email":   apphttp.GetEmail(c),
		"role":    apphttp.GetRole(c),
	})
}

// asCert simula lo que ClientCertMiddleware deja en locals tras un handshake verificado.
func asCert(cn, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(apphttp.LocalUserID, apphttp.CertPrefix+cn)
		c.Locals(apphttp.LocalRole, role)
		return c.Next()
	}
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func get(t *testing.T, app *fiber.App, path, authHeader string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware + RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_MatrizDeRoles(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", apphttp.AuthMiddleware(testJWTSecret), apphttp.RequireRole("admin"), whoami)
	app.Get("/escritura", apphttp.AuthMiddleware(testJWTSecret), apphttp.RequireRole("admin", "operator"), whoami)
	app.Get("/lectura", apphttp.AuthMiddleware(testJWTSecret), apphttp.RequireRole("admin", "operator", "viewer"), whoami)

	cases := []struct {
		path string
		role string
		want int
	}{
		{"/admin", "admin", http.StatusOK},
		{"/admin", "operator", http.StatusForbidden},
		{"/admin", "viewer", http.StatusForbidden},
		{"/escritura", "operator", http.StatusOK},
		{"/escritura", "viewer", http.StatusForbidden},
		{"/lectura", "viewer", http.StatusOK},
		{"/lectura", "operator", http.StatusOK},
		{"/lectura", "auditor", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.path+"/"+tc.role, func(t *testing.T) {
			status, body := get(t, app, tc.path, bearer(t, tc.role))
			assert.Equal(t, tc.want, status)
			if tc.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", body["code"])
			}
		})
	}
}

func TestAuthMiddleware_CabecerasInvalidas(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), whoami)

	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, "admin", testIssuer, -1)
	require.NoError(t, err)
	otherSecret, err := pkgjwt.Generate("otro-secret", testUserID, testEmail, "admin", testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"esquema distinto", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"sin esquema", "solo-un-token", "INVALID_TOKEN"},
		{"token basura", "Bearer no.es.jwt", "INVALID_TOKEN"},
		{"token expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"otro secret", "Bearer " + otherSecret, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, app, "/me", tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestAuthMiddleware_EsquemaBearerSinDistinguirMayusculas(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), whoami)

	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, "viewer", testIssuer, testExpMin)
	require.NoError(t, err)
	status, body := get(t, app, "/me", "bearer "+tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testEmail, body["email"])
	assert.Equal(t, "viewer", body["role"])
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	app := fiber.New()
	app.Get("/lectura", apphttp.AuthMiddleware(testJWTSecret), apphttp.RequireRole("viewer"), whoami)

	status, body := get(t, app, "/lectura", bearer(t, ""))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Identidad por certificado
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_CertificadoNoExigeToken(t *testing.T) {
	app := fiber.New()
	app.Get("/me", asCert("bascula-01", "operator"), apphttp.AuthMiddleware(testJWTSecret), apphttp.RequireRole("operator"), whoami)

	status, body := get(t, app, "/me", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cert:bascula-01", body["user_id"])
	assert.Empty(t, body["email"])
	assert.Equal(t, "operator", body["role"])
}

func TestAuthMiddleware_CertificadoIgnoraBearer(t *testing.T) {
	app := fiber.New()
	app.Get("/me", asCert("bascula-01", "viewer"), apphttp.AuthMiddleware(testJWTSecret), whoami)

	// un token de admin no eleva el rol de una petición ya autenticada por certificado
	status, body := get(t, app, "/me", bearer(t, "admin"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cert:bascula-01", body["user_id"])
	assert.Equal(t, "viewer", body["role"])
}

func TestAuthMiddleware_UserIDSinPrefijoNoSaltaElToken(t *testing.T) {
	app := fiber.New()
	app.Get("/me", func(c *fiber.Ctx) error {
		c.Locals(apphttp.LocalUserID, "bascula-01")
		return c.Next()
	}, apphttp.AuthMiddleware(testJWTSecret), whoami)

	status, body := get(t, app, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestClientCertMiddleware_SinTLSDejaPasar(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.ClientCertMiddleware("operator"), apphttp.AuthMiddleware(testJWTSecret), whoami)

	status, body := get(t, app, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])

	status, body = get(t, app, "/me", bearer(t, "viewer"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, testUserID, body["user_id"])
}
