package api

import (
	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Body string `json:"body" form:"body"`
}

type likePostRequest struct {
	PostID uint `json:"postId" form:"postId" validate:"required"`
}

type commentRequest struct {
	PostID uint   `json:"postId" form:"postId" validate:"required"`
	Body   string `json:"body" form:"body"`
}

type challengeActionRequest struct {
	ChallengeID uint   `json:"challengeId" form:"challengeId" validate:"required"`
	Action      string `json:"action" form:"action"`
}

type subscribeRequest struct {
	PlanName string `json:"planName" form:"planName"`
}

func (handler *Handler) CommunityFeed(c *fiber.Ctx) error {
	posts, err := handler.community.Feed()
	if err != nil {
		return handler.internalError(c, err, "failed to load community feed")
	}
	return c.JSON(fiber.Map{"items": posts})
}

func (handler *Handler) CreatePost(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	request := createPostRequest{}
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, errInvalidBody.Error())
	}
	post, err := handler.community.CreatePost(user.ID, request.Body, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create post")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": post})
}

func (handler *Handler) LikePost(c *fiber.Ctx) error {
	request := likePostRequest{}
	if message, ok := bindRequest(c, &request); !ok {
		return apiError(c, fiber.StatusBadRequest, message)
	}
	likes, err := handler.community.Like(request.PostID)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to like post")
	}
	return c.JSON(fiber.Map{"likes": likes})
}

func (handler *Handler) CommentOnPost(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	request := commentRequest{}
	if message, ok := bindRequest(c, &request); !ok {
		return apiError(c, fiber.StatusBadRequest, message)
	}
	comment, err := handler.community.Comment(user.ID, request.PostID, request.Body, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to add comment")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": comment})
}

func (handler *Handler) ListChallenges(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	items, err := handler.challenges.List(user.ID)
	if err != nil {
		return handler.internalError(c, err, "failed to load challenges")
	}
	return c.JSON(fiber.Map{"items": items})
}

func (handler *Handler) ApplyChallengeAction(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	request := challengeActionRequest{}
	if message, ok := bindRequest(c, &request); !ok {
		return apiError(c, fiber.StatusBadRequest, message)
	}
	progress, err := handler.challenges.Apply(user.ID, request.ChallengeID, request.Action, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update challenge")
	}
	return c.JSON(fiber.Map{"item": progress})
}

func (handler *Handler) SubscriptionOverview(c *fiber.Ctx) error {
	var userID uint
	if user, ok := currentUser(c); ok {
		userID = user.ID
	}
	overview, err := handler.subscriptions.Overview(userID)
	if err != nil {
		return handler.internalError(c, err, "failed to load subscriptions")
	}
	return c.JSON(overview)
}

func (handler *Handler) Subscribe(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	request := subscribeRequest{}
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, errInvalidBody.Error())
	}
	subscription, err := handler.subscriptions.Subscribe(user.ID, request.PlanName, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to change subscription")
	}
	handler.requestLog(c).WithField("user_id", user.ID).WithField("plan", request.PlanName).Info("subscription changed")
	return c.JSON(fiber.Map{"item": subscription})
}
