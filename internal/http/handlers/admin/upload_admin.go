package admin

import (
	"errors"

	"github.com/RuleViz/LightBlog/internal/http/response"
	"github.com/RuleViz/LightBlog/internal/service"

	"github.com/gin-gonic/gin"
)

// UploadImage 上传图片 (Admin)
func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "缺少上传文件", err)
		return
	}

	url, err := h.UploadService.SaveFile(file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTooLarge):
			respondError(c, response.CodeBadRequest, "文件大小超出限制", nil)
		case errors.Is(err, service.ErrUploadInvalidType):
			respondError(c, response.CodeBadRequest, "不支持的文件类型", nil)
		default:
			respondError(c, response.CodeInternal, "文件上传失败", err)
		}
		return
	}

	requestLog(c).Infow("admin_upload_saved", "url", url, "size", file.Size)
	response.Success(c, gin.H{"url": url})
}
