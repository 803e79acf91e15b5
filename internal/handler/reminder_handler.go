package handler

import (
	"github.com/gin-gonic/gin"

	"leaf-care-go/internal/service"
)

// ReminderHandler 返回实时提醒与每日摘要。
type ReminderHandler struct {
	reminderService service.ReminderService
}

func NewReminderHandler(reminderService service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

func (h *ReminderHandler) List(c *gin.Context) {
	list, err := h.reminderService.List(currentUser(c).ID)
	if err != nil {
		writeError(c, "ListReminders", err)
		return
	}
	ok(c, "success", list)
}

func (h *ReminderHandler) Digest(c *gin.Context) {
	digest, err := h.reminderService.Digest(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, "ReminderDigest", err)
		return
	}
	ok(c, "success", digest)
}
