package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/cesar/kaiju/database"
	"github.com/cesar/kaiju/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var validate = validator.New()

type StartConversationRequest struct {
	VeterinarianID string `json:"veterinarian_id" validate:"required,uuid"`
	Subject        string `json:"subject" validate:"max=300"`
	InitialMessage string `json:"initial_message"`
}

type SendMessageRequest struct {
	Content     string   `json:"content" validate:"required"`
	MessageType string   `json:"message_type" validate:"omitempty,oneof=TEXT IMAGE FILE"`
	Attachments []string `json:"attachments"`
}

func StartConversation(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req StartConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	vetID, _ := uuid.Parse(req.VeterinarianID)

	conversation, err := services.NewConversationService(database.DB).Start(callerID, services.StartConversationInput{
		VeterinarianID: vetID,
		Subject:        req.Subject,
		InitialMessage: req.InitialMessage,
	})
	if err != nil {
		return chatError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(conversation)
}

func GetMyConversations(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page, pageSize := pageParams(c, 20)

	conversations, err := services.NewConversationService(database.DB).List(callerID, page, pageSize)
	if err != nil {
		return chatError(c, err)
	}

	return c.JSON(fiber.Map{"data": conversations, "page": page, "page_size": pageSize})
}

func GetConversation(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	conversation, err := services.NewConversationService(database.DB).Get(callerID, conversationID)
	if err != nil {
		return chatError(c, err)
	}

	return c.JSON(conversation)
}

func SendMessage(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	message, err := services.NewMessageService(database.DB).Send(callerID, conversationID, services.SendMessageInput{
		Content:     req.Content,
		MessageType: req.MessageType,
		Attachments: req.Attachments,
	})
	if err != nil {
		return chatError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

func GetConversationMessages(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}
	page, pageSize := pageParams(c, 50)

	messages, err := services.NewMessageService(database.DB).List(callerID, conversationID, page, pageSize)
	if err != nil {
		return chatError(c, err)
	}

	return c.JSON(fiber.Map{"data": messages, "page": page, "page_size": pageSize})
}

func MarkConversationAsRead(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	if err := services.NewConversationService(database.DB).MarkAsRead(callerID, conversationID); err != nil {
		return chatError(c, err)
	}

	return c.JSON(fiber.Map{"status": "success"})
}

func CloseConversation(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	if err := services.NewConversationService(database.DB).Close(callerID, conversationID); err != nil {
		return chatError(c, err)
	}

	return c.JSON(fiber.Map{"status": "success"})
}

func GetUnreadConversationsCount(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	count, err := services.NewConversationService(database.DB).UnreadCount(callerID)
	if err != nil {
		return chatError(c, err)
	}

	return c.JSON(fiber.Map{"unread_count": count})
}

func DeleteMessage(c *fiber.Ctx) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	messageID, err := uuid.Parse(c.Params("messageId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
	}

	if err := services.NewMessageService(database.DB).Delete(callerID, messageID); err != nil {
		return chatError(c, err)
	}

	return c.JSON(fiber.Map{"status": "success"})
}

// currentUserID resolves the caller identity from the verified JWT. The
// resulting fiber.ErrUnauthorized is rendered by the app's error handler.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	raw, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return userID, nil
}

func pageParams(c *fiber.Ctx, defaultSize int) (int, int) {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", strconv.Itoa(defaultSize)))
	return page, pageSize
}

// chatError maps the service error taxonomy onto HTTP statuses. NotFound and
// Forbidden stay distinguishable here; collapsing them to hide existence is a
// product decision left to API gateways.
func chatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrVeterinarianNotFound),
		errors.Is(err, services.ErrConversationNotFound),
		errors.Is(err, services.ErrMessageNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrNotSender):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, services.ErrConversationClosed),
		errors.Is(err, services.ErrVeterinarianUnavailable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, services.ErrEmptyContent):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("🔥 Chat error: %v | Path: %s", err, c.Path())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
