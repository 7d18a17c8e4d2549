package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studynotes/internal/app"
	"studynotes/internal/transport/http/middleware"
	"studynotes/internal/transport/http/response"
)

type SearchHandler struct {
	searchService *app.SearchService
}

type SearchRequest struct {
	SearchType  string `json:"search_type" binding:"required,oneof=summary faqs"`
	SearchInput string `json:"search_input" binding:"required,max=2000"`
	Category    string `json:"category" binding:"max=128"`
	FileName    string `json:"file_name" binding:"max=256"`
}

func NewSearchHandler(searchService *app.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

func (h *SearchHandler) Search(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	results, err := h.searchService.Search(c.Request.Context(), username, app.SearchInput{
		SearchType:  req.SearchType,
		SearchInput: req.SearchInput,
		Category:    req.Category,
		FileName:    req.FileName,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusBadGateway, response.CodeUpstream, "search failed")
		}
		return
	}
	response.OK(c, gin.H{"results": results})
}
