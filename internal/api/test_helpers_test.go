package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/quietlotus/hadane/internal/db"
	"github.com/quietlotus/hadane/internal/services"
)

const testSecretKey = "test-secret"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	database, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	handler := NewHandler(database, testSecretKey, time.UTC, zap.NewNop())
	app := fiber.New()
	RegisterRoutes(app, handler)
	return app
}

func authToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := services.BuildAccessToken([]byte(testSecretKey), userID, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func decodeBody(t *testing.T, response *http.Response, out any) {
	t.Helper()
	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func readDetail(t *testing.T, response *http.Response) string {
	t.Helper()
	payload := map[string]string{}
	decodeBody(t, response, &payload)
	return payload["detail"]
}

// dayOffset formats today+offset in UTC; handlers resolve today with the
// real clock, so fixtures are expressed relative to it.
func dayOffset(offset int) string {
	return time.Now().UTC().AddDate(0, 0, offset).Format("2006-01-02")
}

func recordPayload(date string) map[string]any {
	return map[string]any{
		"date":                date,
		"skin_condition":      4,
		"sleep":               5,
		"stress":              2,
		"skincare_effort":     3,
		"menstruation_status": true,
		"env_pref_code":       "13",
		"memo":                "slept well",
	}
}
