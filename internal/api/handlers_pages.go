package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebalance/internal/nutrition"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageNames = []string{
	"login",
	"register",
	"onboarding",
	"dashboard",
	"change_password",
}

func parsePageTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pageNames))
	for _, page := range pageNames {
		parsed, err := template.New("base").ParseFS(templateFiles, "templates/base.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page template %s: %w", page, err)
		}
		templates[page] = parsed
	}
	return templates, nil
}

func (handler *Handler) render(c *fiber.Ctx, name string, title string, data fiber.Map) error {
	tmpl, ok := handler.templates[name]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).SendString("template not found")
	}

	payload := fiber.Map{
		"Title":     title,
		"CSRFToken": csrfToken(c),
		"Flash":     handler.popFlashCookie(c),
	}
	if user, ok := currentUser(c); ok {
		payload["CurrentUser"] = user
	}
	for key, value := range data {
		payload[key] = value
	}

	var output bytes.Buffer
	if err := tmpl.ExecuteTemplate(&output, "base", payload); err != nil {
		handler.requestLog(c).WithError(err).Error("render page")
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render template")
	}
	c.Type("html", "utf-8")
	return c.Send(output.Bytes())
}

func (handler *Handler) Root(c *fiber.Ctx) error {
	if _, ok := currentUser(c); ok {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}

func (handler *Handler) ShowLoginPage(c *fiber.Ctx) error {
	if _, ok := currentUser(c); ok {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return handler.render(c, "login", "Sign in", fiber.Map{
		"Next": sanitizeRedirectPath(c.Query("next"), ""),
	})
}

func (handler *Handler) ShowRegisterPage(c *fiber.Ctx) error {
	if _, ok := currentUser(c); ok {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return handler.render(c, "register", "Register", nil)
}

func (handler *Handler) ShowOnboardingPage(c *fiber.Ctx) error {
	return handler.render(c, "onboarding", "Onboarding", fiber.Map{
		"Sexes":          []nutrition.Sex{nutrition.SexMale, nutrition.SexFemale, nutrition.SexOther},
		"ActivityLevels": []nutrition.ActivityLevel{nutrition.ActivitySedentary, nutrition.ActivityModerate, nutrition.ActivityActive},
		"Goals":          []nutrition.Goal{nutrition.GoalLose, nutrition.GoalMaintain, nutrition.GoalGain},
	})
}

func (handler *Handler) ShowChangePasswordPage(c *fiber.Ctx) error {
	return handler.render(c, "change_password", "Change password", nil)
}

func (handler *Handler) ShowDashboardPage(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	summary, err := handler.dashboard.Build(user.ID, handler.now(), handler.location)
	if err != nil {
		handler.requestLog(c).WithError(err).Error("build dashboard page")
		return c.Status(fiber.StatusInternalServerError).SendString("failed to load dashboard")
	}
	return handler.render(c, "dashboard", "Dashboard", fiber.Map{"Summary": summary})
}
