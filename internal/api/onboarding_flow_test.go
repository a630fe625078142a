package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

type onboardingResponse struct {
	OK            bool    `json:"ok"`
	DailyCalories int     `json:"dailyCalories"`
	BMR           float64 `json:"bmr"`
	TDEE          float64 `json:"tdee"`
	MacroGoals    struct {
		ProteinGrams int `json:"proteinGrams"`
		FatGrams     int `json:"fatGrams"`
		CarbGrams    int `json:"carbGrams"`
	} `json:"macroGoals"`
}

func TestOnboardingStoresEstimateFromJSONNumbers(t *testing.T) {
	app, _ := newTestApp(t)
	authCookie := registerAndExtractAuthCookie(t, app, "numbers@example.com", "numbers")

	response := doJSONRequest(t, app, http.MethodPost, "/api/onboarding", authCookie, canonicalOnboardingPayload())
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
	payload := onboardingResponse{}
	decodeJSONBody(t, response.Body, &payload)
	if !payload.OK || payload.DailyCalories != 2556 {
		t.Fatalf("expected 2556 kcal, got %+v", payload)
	}
	if payload.MacroGoals.ProteinGrams != 192 || payload.MacroGoals.FatGrams != 85 || payload.MacroGoals.CarbGrams != 256 {
		t.Fatalf("expected macros 192/85/256, got %+v", payload.MacroGoals)
	}
	if payload.BMR != 1648.75 {
		t.Fatalf("expected bmr 1648.75, got %v", payload.BMR)
	}

	profileResponse := doJSONRequest(t, app, http.MethodGet, "/api/profile", authCookie, nil)
	defer profileResponse.Body.Close()
	profile := struct {
		Profile struct {
			DailyCalories       int  `json:"dailyCalories"`
			ProteinGrams        int  `json:"proteinGrams"`
			OnboardingCompleted bool `json:"onboardingCompleted"`
		} `json:"profile"`
	}{}
	decodeJSONBody(t, profileResponse.Body, &profile)
	if profile.Profile.DailyCalories != 2556 || profile.Profile.ProteinGrams != 192 || !profile.Profile.OnboardingCompleted {
		t.Fatalf("expected stored estimate, got %+v", profile.Profile)
	}
}

func TestOnboardingAcceptsNumericStringsAndAliases(t *testing.T) {
	app, _ := newTestApp(t)
	authCookie := registerAndExtractAuthCookie(t, app, "strings@example.com", "strings")

	response := doJSONRequest(t, app, http.MethodPost, "/api/onboarding", authCookie, map[string]any{
		"age":           "30",
		"gender":        "Male",
		"height":        "175",
		"weight":        "70.0",
		"activityLevel": "moderate",
		"goal":          "maintain",
	})
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
	payload := onboardingResponse{}
	decodeJSONBody(t, response.Body, &payload)
	if payload.DailyCalories != 2556 {
		t.Fatalf("expected 2556 kcal, got %d", payload.DailyCalories)
	}
}

func TestOnboardingAcceptsFormBody(t *testing.T) {
	app, _ := newTestApp(t)
	authCookie := registerAndExtractAuthCookie(t, app, "form@example.com", "formuser")

	form := url.Values{
		"age":           {"30"},
		"sex":           {"male"},
		"heightCm":      {"175"},
		"weightKg":      {"70"},
		"activityLevel": {"moderate"},
		"goal":          {"lose"},
	}
	request := httptest.NewRequest(http.MethodPost, "/api/onboarding", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Cookie", authCookie)

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("onboarding request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
	payload := onboardingResponse{}
	decodeJSONBody(t, response.Body, &payload)
	if payload.DailyCalories != 2056 {
		t.Fatalf("expected 2056 kcal for lose goal, got %d", payload.DailyCalories)
	}
}

func TestOnboardingBrowserFormRedirectsToDashboard(t *testing.T) {
	app, _ := newTestApp(t)
	authCookie := registerAndExtractAuthCookie(t, app, "browser@example.com", "browser")

	form := url.Values{
		"age":           {"30"},
		"sex":           {"female"},
		"heightCm":      {"165"},
		"weightKg":      {"60"},
		"activityLevel": {"sedentary"},
		"goal":          {"maintain"},
	}
	request := httptest.NewRequest(http.MethodPost, "/api/onboarding", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Accept", "text/html")
	request.Header.Set("Cookie", authCookie)

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("onboarding request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", response.StatusCode)
	}
	if location := response.Header.Get("Location"); location != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %q", location)
	}
}

func TestOnboardingRejectsInvalidFields(t *testing.T) {
	app, _ := newTestApp(t)
	authCookie := registerAndExtractAuthCookie(t, app, "invalid@example.com", "invalid")

	tests := []struct {
		name      string
		overrides map[string]any
		field     string
	}{
		{name: "age below range", overrides: map[string]any{"age": 12}, field: "age"},
		{name: "fractional age", overrides: map[string]any{"age": 30.5}, field: "age"},
		{name: "unknown sex", overrides: map[string]any{"sex": "robot"}, field: "sex"},
		{name: "height not a number", overrides: map[string]any{"heightCm": "tall"}, field: "heightCm"},
		{name: "weight out of range", overrides: map[string]any{"weightKg": 10}, field: "weightKg"},
		{name: "unknown activity level", overrides: map[string]any{"activityLevel": "extreme"}, field: "activityLevel"},
		{name: "missing goal", overrides: map[string]any{"goal": nil}, field: "goal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := canonicalOnboardingPayload()
			for key, value := range tt.overrides {
				payload[key] = value
			}

			response := doJSONRequest(t, app, http.MethodPost, "/api/onboarding", authCookie, payload)
			defer response.Body.Close()

			if response.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", response.StatusCode)
			}
			body := map[string]string{}
			decodeJSONBody(t, response.Body, &body)
			if body["field"] != tt.field {
				t.Fatalf("expected field %q, got %q (%s)", tt.field, body["field"], body["error"])
			}
			if body["error"] == "" {
				t.Fatal("expected error message")
			}
		})
	}
}

func TestOnboardingRequiresAuthentication(t *testing.T) {
	app, _ := newTestApp(t)

	response := doJSONRequest(t, app, http.MethodPost, "/api/onboarding", "", canonicalOnboardingPayload())
	defer response.Body.Close()

	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", response.StatusCode)
	}
	if message := readAPIError(t, response.Body); message != "unauthorized" {
		t.Fatalf("expected unauthorized error, got %q", message)
	}
}
