package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebalance/internal/db"
	"gorm.io/gorm"
)

const (
	testAdminEmail = "admin@example.com"
	testPassword   = "StrongPass1"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	return newTestAppWithOptions(t, nil)
}

func newTestAppWithOptions(t *testing.T, configure func(*Options)) (*fiber.App, *gorm.DB) {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "bitebalance-api-test.db")
	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	options := Options{
		SecretKey:   "test-secret-key",
		AdminEmails: map[string]struct{}{testAdminEmail: {}},
		Logger:      logger,
	}
	if configure != nil {
		configure(&options)
	}

	handler, err := NewHandler(database, options)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	return app, database
}

func doJSONRequest(t *testing.T, app *fiber.App, method string, path string, authCookie string, payload any) *http.Response {
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
	request.Header.Set("Accept", "application/json")
	if authCookie != "" {
		request.Header.Set("Cookie", authCookie)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func registerAndExtractAuthCookie(t *testing.T, app *fiber.App, email string, username string) string {
	t.Helper()

	response := doJSONRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":            "Test User",
		"username":        username,
		"email":           email,
		"password":        testPassword,
		"confirmPassword": testPassword,
	})
	defer response.Body.Close()

	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected register status 201, got %d", response.StatusCode)
	}
	cookie := responseCookieValue(response.Cookies(), authCookieName)
	if cookie == "" {
		t.Fatal("auth cookie is missing in register response")
	}
	return authCookieName + "=" + cookie
}

func loginAndExtractAuthCookie(t *testing.T, app *fiber.App, email string, password string) string {
	t.Helper()

	response := doJSONRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected login status 200, got %d", response.StatusCode)
	}
	cookie := responseCookieValue(response.Cookies(), authCookieName)
	if cookie == "" {
		t.Fatal("auth cookie is missing in login response")
	}
	return authCookieName + "=" + cookie
}

// onboardUser registers a member and completes onboarding with the canonical inputs.
func onboardUser(t *testing.T, app *fiber.App, email string, username string) string {
	t.Helper()

	authCookie := registerAndExtractAuthCookie(t, app, email, username)
	response := doJSONRequest(t, app, http.MethodPost, "/api/onboarding", authCookie, canonicalOnboardingPayload())
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected onboarding status 200, got %d", response.StatusCode)
	}
	return authCookie
}

func canonicalOnboardingPayload() map[string]any {
	return map[string]any{
		"age":           30,
		"sex":           "male",
		"heightCm":      175,
		"weightKg":      70,
		"activityLevel": "moderate",
		"goal":          "maintain",
	}
}

func responseCookieValue(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]any{}
	decodeJSONBody(t, body, &payload)
	message, _ := payload["error"].(string)
	return message
}

func decodeJSONBody(t *testing.T, body io.Reader, target any) {
	t.Helper()

	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		t.Fatalf("decode response body %q: %v", string(raw), err)
	}
}

func readBody(t *testing.T, body io.Reader) string {
	t.Helper()

	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(raw)
}
