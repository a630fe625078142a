package api

import (
	"github.com/gofiber/fiber/v2"
)

type warnUserRequest struct {
	Message string `json:"message" form:"message"`
}

func (handler *Handler) AdminCheck(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(fiber.Map{"isAdmin": handler.admin.Policy().IsAdmin(user.Email)})
}

func (handler *Handler) AdminListUsers(c *fiber.Ctx) error {
	users, err := handler.admin.ListUsers()
	if err != nil {
		return handler.internalError(c, err, "failed to load users")
	}
	return c.JSON(fiber.Map{"items": users})
}

func (handler *Handler) AdminDeleteUser(c *fiber.Ctx) error {
	actor, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := handler.admin.DeleteUser(actor.ID, targetID); err != nil {
		return handler.respondServiceError(c, err, "failed to delete user")
	}
	handler.requestLog(c).WithField("actor_id", actor.ID).WithField("user_id", targetID).Warn("user deleted by admin")
	return c.JSON(fiber.Map{"success": true})
}

func (handler *Handler) AdminWarnUser(c *fiber.Ctx) error {
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid user id")
	}
	request := warnUserRequest{}
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, errInvalidBody.Error())
	}

	user, err := handler.admin.WarnUser(c.UserContext(), targetID, request.Message)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to warn user")
	}
	return c.JSON(fiber.Map{"success": true, "warnings": user.WarningCount})
}

func (handler *Handler) AdminListPosts(c *fiber.Ctx) error {
	posts, err := handler.admin.ListPosts()
	if err != nil {
		return handler.internalError(c, err, "failed to load posts")
	}
	return c.JSON(fiber.Map{"items": posts})
}

func (handler *Handler) AdminDeletePost(c *fiber.Ctx) error {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid post id")
	}
	if err := handler.admin.DeletePost(postID); err != nil {
		return handler.respondServiceError(c, err, "failed to delete post")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (handler *Handler) AdminSiteStats(c *fiber.Ctx) error {
	stats, err := handler.stats.Site()
	if err != nil {
		return handler.internalError(c, err, "failed to load site stats")
	}
	return c.JSON(stats)
}
