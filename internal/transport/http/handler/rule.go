package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studynotes/internal/app"
	"studynotes/internal/model"
	"studynotes/internal/transport/http/middleware"
	"studynotes/internal/transport/http/response"
)

type RuleHandler struct {
	ruleService *app.RuleService
}

type RuleRequest struct {
	Name        string `json:"name" binding:"required,max=128"`
	Type        string `json:"type" binding:"required,max=128"`
	Description string `json:"description" binding:"required"`
}

func NewRuleHandler(ruleService *app.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

func (h *RuleHandler) List(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	rules, err := h.ruleService.List(c.Request.Context(), username)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list rules failed")
		return
	}
	response.OK(c, gin.H{"rules": rules})
}

func (h *RuleHandler) Create(c *gin.Context) {
	h.save(c, h.ruleService.Create)
}

// Update rewrites the rule whose name matches the request body.
func (h *RuleHandler) Update(c *gin.Context) {
	h.save(c, h.ruleService.Update)
}

func (h *RuleHandler) save(c *gin.Context, op func(ctx context.Context, username string, in app.RuleInput) (*model.Rule, error)) {
	username, ok := middleware.Username(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}
	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	rule, err := op(c.Request.Context(), username, app.RuleInput{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrRuleExists):
			response.Error(c, http.StatusConflict, response.CodeRuleExists, err.Error())
		case errors.Is(err, app.ErrRuleNotFound):
			response.Error(c, http.StatusNotFound, response.CodeRuleNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "save rule failed")
		}
		return
	}
	response.OK(c, rule)
}

func (h *RuleHandler) Delete(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid rule id")
		return
	}

	if err := h.ruleService.Delete(c.Request.Context(), username, uint(id)); err != nil {
		switch {
		case errors.Is(err, app.ErrRuleNotFound):
			response.Error(c, http.StatusNotFound, response.CodeRuleNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete rule failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted": id})
}
