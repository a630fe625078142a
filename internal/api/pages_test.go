package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func getPage(t *testing.T, app *fiber.App, path string, authCookie string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	request.Header.Set("Accept", "text/html")
	if authCookie != "" {
		request.Header.Set("Cookie", authCookie)
	}
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return response
}

func TestPagesRedirectByAuthAndOnboardingState(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		path     string
		location string
	}{
		{path: "/", location: "/login"},
		{path: "/dashboard", location: "/login"},
		{path: "/onboarding", location: "/login"},
	}
	for _, tt := range tests {
		response := getPage(t, app, tt.path, "")
		response.Body.Close()
		if response.StatusCode != http.StatusSeeOther || response.Header.Get("Location") != tt.location {
			t.Fatalf("%s: expected redirect to %s, got %d %q", tt.path, tt.location, response.StatusCode, response.Header.Get("Location"))
		}
	}

	authCookie := registerAndExtractAuthCookie(t, app, "pages@example.com", "pages")
	pending := getPage(t, app, "/dashboard", authCookie)
	pending.Body.Close()
	if pending.StatusCode != http.StatusSeeOther || pending.Header.Get("Location") != "/onboarding" {
		t.Fatalf("expected redirect to onboarding, got %d %q", pending.StatusCode, pending.Header.Get("Location"))
	}

	onboarding := getPage(t, app, "/onboarding", authCookie)
	defer onboarding.Body.Close()
	if onboarding.StatusCode != http.StatusOK {
		t.Fatalf("expected onboarding page, got %d", onboarding.StatusCode)
	}
	if body := readBody(t, onboarding.Body); !strings.Contains(body, `name="activityLevel"`) {
		t.Fatal("expected onboarding form fields")
	}

	completed := doJSONRequest(t, app, http.MethodPost, "/api/onboarding", authCookie, canonicalOnboardingPayload())
	completed.Body.Close()

	dashboard := getPage(t, app, "/dashboard", authCookie)
	defer dashboard.Body.Close()
	if dashboard.StatusCode != http.StatusOK {
		t.Fatalf("expected dashboard page, got %d", dashboard.StatusCode)
	}
	if body := readBody(t, dashboard.Body); !strings.Contains(body, "of 2556 kcal") {
		t.Fatal("expected daily goal on the dashboard page")
	}

	root := getPage(t, app, "/", authCookie)
	root.Body.Close()
	if root.Header.Get("Location") != "/dashboard" {
		t.Fatalf("expected signed-in root to open the dashboard, got %q", root.Header.Get("Location"))
	}
}

func TestAdminSkipsOnboardingGate(t *testing.T) {
	app, _ := newTestApp(t)
	adminCookie := registerAndExtractAuthCookie(t, app, testAdminEmail, "pageadmin")

	response := getPage(t, app, "/dashboard", adminCookie)
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected admin dashboard without onboarding, got %d", response.StatusCode)
	}
}

func TestLoginPageShowsFlashOnce(t *testing.T) {
	app, _ := newTestApp(t)

	request := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("email=nobody%40example.com&password=WrongPass1"))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Accept", "text/html")
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusSeeOther || response.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", response.StatusCode, response.Header.Get("Location"))
	}
	flashValue := responseCookieValue(response.Cookies(), flashCookieName)

	page := getPage(t, app, "/login", flashCookieName+"="+flashValue)
	defer page.Body.Close()
	body := readBody(t, page.Body)
	if !strings.Contains(body, "invalid credentials") {
		t.Fatal("expected flash error on login page")
	}
	if !strings.Contains(body, `value="nobody@example.com"`) {
		t.Fatal("expected login email to be kept")
	}
	if cleared := responseCookieValue(page.Cookies(), flashCookieName); cleared != "" {
		t.Fatalf("expected flash cookie to be cleared, got %q", cleared)
	}
}

func TestAPIRateLimit(t *testing.T) {
	app, _ := newTestAppWithOptions(t, func(options *Options) {
		options.RateLimitRPS = 0.001
		options.RateLimitBurst = 2
	})

	for attempt := 0; attempt < 2; attempt++ {
		response := doJSONRequest(t, app, http.MethodGet, "/api/foods", "", nil)
		response.Body.Close()
		if response.StatusCode != http.StatusOK {
			t.Fatalf("attempt %d: expected status 200, got %d", attempt+1, response.StatusCode)
		}
	}

	limited := doJSONRequest(t, app, http.MethodGet, "/api/foods", "", nil)
	defer limited.Body.Close()
	if limited.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", limited.StatusCode)
	}

	health := getPage(t, app, "/healthz", "")
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("expected health check outside the limiter, got %d", health.StatusCode)
	}
}
