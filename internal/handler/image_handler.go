package handler

import (
	"github.com/gin-gonic/gin"

	"leaf-care-go/internal/service"
	"leaf-care-go/pkg/log"
)

// 上传图片大小上限
const maxImageBytes = 10 << 20

// ImageHandler 处理植物照片上传与分析。
type ImageHandler struct {
	imageService service.ImageService
}

func NewImageHandler(imageService service.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// Analyze 接收 multipart 字段 image。
func (h *ImageHandler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "请上传图片文件")
		return
	}
	if fileHeader.Size > maxImageBytes {
		badRequest(c, "图片不能超过 10MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("打开上传图片失败", err)
		badRequest(c, "请上传图片文件")
		return
	}
	defer file.Close()

	analysis, err := h.imageService.Analyze(c.Request.Context(), currentUser(c).ID, service.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		writeError(c, "AnalyzeImage", err)
		return
	}
	ok(c, "success", gin.H{"success": true, "analysis": analysis})
}
