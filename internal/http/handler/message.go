package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/service"
)

type sendMessageRequest struct {
	Content string `json:"content"`
}

type messageListResponse struct {
	Items []model.Message `json:"data"`
}

// ListMessages godoc
//
// @Summary  Chat history of a document, oldest first
// @Tags     chat
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} messageListResponse
// @Failure  404 {object} errorPayload
// @Router   /documents/{id}/messages [get]
func ListMessages(chatSvc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		msgs, err := chatSvc.History(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, documentNotFound)
		}
		if msgs == nil {
			msgs = []model.Message{}
		}
		return c.JSON(messageListResponse{Items: msgs})
	}
}

// SendMessage godoc
//
// @Summary  Send a chat message; proposed field values are applied
// @Tags     chat
// @Accept   json
// @Produce  json
// @Param    id   path string             true "document id"
// @Param    body body sendMessageRequest true "message"
// @Success  201 {object} service.ChatResult
// @Failure  409 {object} errorPayload
// @Failure  503 {object} errorPayload
// @Router   /documents/{id}/messages [post]
func SendMessage(chatSvc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req sendMessageRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		res, err := chatSvc.Send(c.UserContext(), id, req.Content)
		if err != nil {
			return serviceError(c, err, documentNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}
