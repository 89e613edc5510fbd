package controllers

import (
	"net/http"
	"strings"

	apperrors "github.com/vlabhub/labchat-go/internal/errors"
	"github.com/vlabhub/labchat-go/internal/services"
)

// SearchController 直接检索接口：调试与门户侧讲义搜索用
type SearchController struct {
	BaseController
	retrievalService *services.RetrievalService
}

// NewSearchController 创建检索控制器
func NewSearchController(retrievalService *services.RetrievalService) *SearchController {
	return &SearchController{retrievalService: retrievalService}
}

// Search GET /api/search?q=...
func (c *SearchController) Search() {
	query := strings.TrimSpace(c.GetString("q"))
	if query == "" {
		c.JSONError(http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	matches, err := c.retrievalService.Search(c.Ctx.Request.Context(), query)
	if err != nil {
		appErr := apperrors.GetAppError(err)
		c.JSONError(appErr.HTTPCode, appErr.Message)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"query":   query,
		"matches": matches,
	})
}
