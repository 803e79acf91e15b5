package handler

import (
	"github.com/gin-gonic/gin"

	"leaf-care-go/internal/service"
)

// KnowledgeHandler 提供养护知识库接口，无需登录。
type KnowledgeHandler struct {
	knowledgeService service.KnowledgeService
}

func NewKnowledgeHandler(knowledgeService service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledgeService: knowledgeService}
}

func (h *KnowledgeHandler) List(c *gin.Context) {
	ok(c, "success", gin.H{"knowledge": h.knowledgeService.List()})
}

func (h *KnowledgeHandler) Get(c *gin.Context) {
	article, err := h.knowledgeService.Get(c.Param("id"))
	if err != nil {
		writeError(c, "GetKnowledge", err)
		return
	}
	ok(c, "success", article)
}

// Search 按关键字 q 检索知识，q 为空时返回全部。
func (h *KnowledgeHandler) Search(c *gin.Context) {
	hits, err := h.knowledgeService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, "SearchKnowledge", err)
		return
	}
	ok(c, "success", gin.H{"knowledge": hits})
}
