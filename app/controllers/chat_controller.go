package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/vlabhub/labchat-go/internal/auth"
	apperrors "github.com/vlabhub/labchat-go/internal/errors"
	"github.com/vlabhub/labchat-go/internal/services"
)

var validate = validator.New()

// ChatController 问答入口
type ChatController struct {
	BaseController
	chatService *services.ChatService
	jwtService  *auth.JWTService
}

// NewChatController 创建问答控制器
func NewChatController(chatService *services.ChatService, jwtService *auth.JWTService) *ChatController {
	return &ChatController{
		chatService: chatService,
		jwtService:  jwtService,
	}
}

// AskPayload 提问请求体
type AskPayload struct {
	SessionID string `json:"session_id" validate:"required,max=255"`
	LabID     string `json:"lab_id" validate:"max=255"`
	Question  string `json:"question" validate:"required,min=1,max=2000"`
}

// Ask POST /api/chat/ask
func (c *ChatController) Ask() {
	userID, ok := c.getAuthenticatedUserID(c.jwtService)
	if !ok {
		c.JSONError(http.StatusUnauthorized, "valid portal token required")
		return
	}

	var payload AskPayload
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &payload); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(&payload); err != nil {
		c.JSONError(http.StatusBadRequest, err.Error())
		return
	}

	resp, err := c.chatService.Ask(c.Ctx.Request.Context(), services.AskRequest{
		SessionID: payload.SessionID,
		UserID:    userID,
		LabID:     payload.LabID,
		Question:  payload.Question,
	})
	if err != nil {
		appErr := apperrors.GetAppError(err)
		c.JSONError(appErr.HTTPCode, appErr.Message)
		return
	}

	c.JSONSuccess(resp)
}
