package routes

import (
	"github.com/cesar/kaiju/handlers"
	"github.com/cesar/kaiju/middleware"
	"github.com/gofiber/fiber/v2"
)

func ChatRoutes(app *fiber.App) {
	api := app.Group("/api/v1/chat", middleware.Protected())

	conversations := api.Group("/conversations")
	conversations.Post("", handlers.StartConversation)
	conversations.Get("", handlers.GetMyConversations)
	conversations.Get("/unread-count", handlers.GetUnreadConversationsCount)
	conversations.Get("/:conversationId", handlers.GetConversation)
	conversations.Post("/:conversationId/messages", handlers.SendMessage)
	conversations.Get("/:conversationId/messages", handlers.GetConversationMessages)
	conversations.Patch("/:conversationId/read", handlers.MarkConversationAsRead)
	conversations.Patch("/:conversationId/close", handlers.CloseConversation)

	api.Delete("/messages/:messageId", handlers.DeleteMessage)
}
