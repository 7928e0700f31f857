package recipe

import (
	"net/http"

	"pantry-pal/internal/api/handlers"
	"pantry-pal/internal/core/ingredient"
	recipeService "pantry-pal/internal/core/recipe"
	"pantry-pal/internal/core/session"
	"pantry-pal/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateRequest 依食材與偏好生成食譜
type GenerateRequest struct {
	Ingredients []string       `json:"ingredients" binding:"required,min=1,max=30"`
	Filters     common.Filters `json:"filters"`
	SessionID   string         `json:"session_id,omitempty"`
}

// RankRequest 以目前的食材與偏好重新排序既有食譜
type RankRequest struct {
	Ingredients []string        `json:"ingredients"`
	Filters     common.Filters  `json:"filters"`
	Recipes     []common.Recipe `json:"recipes" binding:"required"`
}

// RecipesResponse 食譜清單
type RecipesResponse struct {
	Recipes []common.Recipe `json:"recipes"`
}

// Handler 食譜處理程序
type Handler struct {
	recipes  *recipeService.Service
	sessions *session.Service
}

// NewHandler 創建新的食譜處理程序；sessions 可為 nil
func NewHandler(recipes *recipeService.Service, sessions *session.Service) *Handler {
	return &Handler{recipes: recipes, sessions: sessions}
}

// HandleGenerate 呼叫模型生成食譜
func (h *Handler) HandleGenerate(c *gin.Context) {
	var req GenerateRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("ingredient_count", len(req.Ingredients)),
		zap.String("cuisine", req.Filters.Cuisine),
	)

	recipes, err := h.recipes.Generate(c.Request.Context(), req.Ingredients, req.Filters)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	if req.SessionID != "" && h.sessions != nil {
		c.Set(handlers.ContextKeySessionID, req.SessionID)
		if _, err := h.sessions.SetRecipes(c.Request.Context(), req.SessionID, recipes); err != nil {
			handlers.RespondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, RecipesResponse{Recipes: recipes})
}

// HandleRank 篩選並依符合度排序，不呼叫模型
func (h *Handler) HandleRank(c *gin.Context) {
	var req RankRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	ranked := ingredient.FilterAndRank(req.Recipes, req.Ingredients, req.Filters.WithDefaults())
	c.JSON(http.StatusOK, RecipesResponse{Recipes: ranked})
}
