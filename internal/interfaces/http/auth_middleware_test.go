package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bookstore-inventory/internal/application/dto"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	pkgjwt "github.com/jhoicas/bookstore-inventory/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tokens de prueba
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "clerk-0001"
	testIssuer    = "bookstore-inventory-test"
	testExpMin    = 60
)

// tokenForRole genera un JWT de testUserID con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return tokenFor(t, testUserID, role)
}

func tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// raw envía la petición con el header Authorization tal cual (sin cuerpo).
func (a *apiClient) raw(method, path, authHeader string) (int, dto.ErrorResponse) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	var out dto.ErrorResponse
	if resp.StatusCode >= 400 {
		_ = decodeBody(resp, &out)
	}
	return resp.StatusCode, out
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func decodeBody(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware sobre rutas reales
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_RechazaCabecerasInvalidas(t *testing.T) {
	api := newAPI(t)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, pkgjwt.RoleAdmin, testIssuer, -5)
	require.NoError(t, err)
	ajena, err := pkgjwt.Generate("otra-clave", testUserID, pkgjwt.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"esquema distinto de Bearer", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"token expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"firmado con otra clave", "Bearer " + ajena, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := api.raw(http.MethodPost, "/api/alerts/evaluate", tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestAuth_EsquemaBearerSinDistinguirMayusculas(t *testing.T) {
	api := newAPI(t)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, pkgjwt.RoleClerk, testIssuer, testExpMin)
	require.NoError(t, err)

	status, _ := api.raw(http.MethodGet, "/api/alerts", "bearer "+tok)
	assert.Equal(t, http.StatusOK, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole en POST /api/alerts/evaluate
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_BarridoSegunRol(t *testing.T) {
	cases := []struct {
		role   string
		status int
		code   string
	}{
		{pkgjwt.RoleAdmin, http.StatusOK, ""},
		{pkgjwt.RoleManager, http.StatusOK, ""},
		{pkgjwt.RoleClerk, http.StatusForbidden, "FORBIDDEN"},
		{"auditor", http.StatusForbidden, "FORBIDDEN"},
		{"", http.StatusUnauthorized, "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run("rol="+tc.role, func(t *testing.T) {
			api := newAPI(t)
			status, body := api.raw(http.MethodPost, "/api/alerts/evaluate", tokenFor(t, "user-9", tc.role))
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

// Escenario: un rol rechazado no dispara el barrido; ninguna alerta se crea.
func TestAuth_BarridoRechazadoNoCreaAlertas(t *testing.T) {
	api := newAPI(t)
	api.createExternal("ISBN-900")
	item, err := api.store.Items().GetByRef(context.Background(), entity.External("ISBN-900"))
	require.NoError(t, err)

	status, _ := api.raw(http.MethodPost, "/api/alerts/evaluate", tokenFor(t, "clerk-7", pkgjwt.RoleClerk))
	require.Equal(t, http.StatusForbidden, status)
	assert.Empty(t, api.store.AlertsForItem(item.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// El actor del token llega a la auditoría
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_ActorDelTokenEnAuditoria(t *testing.T) {
	api := newAPI(t)
	const actor = "manager-0042"

	req := httptest.NewRequest(http.MethodPost, "/api/items", jsonBody(t, dto.CreateItemRequest{
		Name: "Atlas Escolar", Price: "18.00", ExternalID: "ISBN-901",
	}))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenFor(t, actor, pkgjwt.RoleManager))
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/items/external/ISBN-901/adjustments", jsonBody(t, dto.AdjustStockRequest{
		Mode: "add", Amount: 4, Reason: "Inventory Adjustment",
	}))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenFor(t, actor, pkgjwt.RoleManager))
	resp, err = api.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	item, err := api.store.Items().GetByRef(context.Background(), entity.External("ISBN-901"))
	require.NoError(t, err)
	entries := api.store.AuditEntries(item.ID)
	require.Len(t, entries, 2, "alta + ajuste")
	assert.Equal(t, entity.AuditCreate, entries[0].Action)
	assert.Equal(t, entity.AuditAdjustStock, entries[1].Action)
	for _, e := range entries {
		assert.Equal(t, actor, e.ActorID)
	}

	// El barrido también firma con el usuario del token
	status, _ := api.raw(http.MethodPost, "/api/alerts/evaluate", tokenFor(t, "admin-0001", pkgjwt.RoleAdmin))
	require.Equal(t, http.StatusOK, status)
	alerts := api.store.AlertsForItem(item.ID)
	require.Len(t, alerts, 1)
	hist := api.store.AlertHistoryEntries(alerts[0].ID)
	require.Len(t, hist, 1)
	assert.Equal(t, "admin-0001", hist[0].ActorID)
}
