package handler

import (
	"github.com/gin-gonic/gin"

	"leaf-care-go/internal/service"
)

// ConversationHandler 处理对话历史的查询。
type ConversationHandler struct {
	conversationService service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler 实例。
func NewConversationHandler(conversationService service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// List 返回当前用户最近的对话摘要。
func (h *ConversationHandler) List(c *gin.Context) {
	convs, err := h.conversationService.ListRecent(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, "ListConversations", err)
		return
	}
	ok(c, "success", gin.H{"conversations": convs})
}

// Get 返回一个对话的完整消息。
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.conversationService.Get(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		writeError(c, "GetConversation", err)
		return
	}
	ok(c, "success", conv)
}
