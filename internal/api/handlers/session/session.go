package session

import (
	"net/http"

	"pantry-pal/internal/api/handlers"
	coreSession "pantry-pal/internal/core/session"
	"pantry-pal/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// View 回傳給前端的 session，附帶衍生欄位
type View struct {
	*coreSession.Session
	Ingredients []string                                `json:"ingredients"`
	UseSoon     []common.Ingredient                     `json:"useSoon"`
	ByCategory  map[common.Category][]common.Ingredient `json:"byCategory"`
}

func newView(s *coreSession.Session) View {
	return View{
		Session:     s,
		Ingredients: s.Ingredients(),
		UseSoon:     s.Pantry.UseSoon(),
		ByCategory:  s.Pantry.ByCategory(),
	}
}

// IngredientRequest 新增或修改食材
type IngredientRequest struct {
	Name     string          `json:"name" binding:"required"`
	Category common.Category `json:"category"`
	UseSoon  bool            `json:"useSoon"`
	Quantity int             `json:"quantity" binding:"gte=0"`
}

func (r IngredientRequest) toIngredient() (common.Ingredient, error) {
	if r.Category != "" && !r.Category.Valid() {
		return common.Ingredient{}, common.ErrInvalidRequest.Wrap(nil, "unknown category: "+string(r.Category))
	}
	return common.Ingredient{
		Name:     r.Name,
		Category: r.Category,
		UseSoon:  r.UseSoon,
		Quantity: r.Quantity,
	}, nil
}

// GroceryRequest 加入購物清單：指定項目，或指定食譜 ID 加入缺少的食材
type GroceryRequest struct {
	Items []struct {
		Name     string `json:"name" binding:"required"`
		Quantity string `json:"quantity"`
	} `json:"items" binding:"omitempty,dive"`
	RecipeID *int `json:"recipe_id"`
}

// Handler session 處理器
type Handler struct {
	sessions *coreSession.Service
}

// NewHandler 創建 session 處理器
func NewHandler(sessions *coreSession.Service) *Handler {
	return &Handler{sessions: sessions}
}

// Register 註冊 /sessions 底下的路由
func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/sessions")
	g.Use(func(c *gin.Context) {
		if id := c.Param("id"); id != "" {
			c.Set(handlers.ContextKeySessionID, id)
		}
	})
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.PUT("/:id/preferences", h.SetPreferences)

	g.POST("/:id/ingredients", h.AddIngredient)
	g.PUT("/:id/ingredients/:name", h.EditIngredient)
	g.DELETE("/:id/ingredients/:name", h.RemoveIngredient)
	g.POST("/:id/staples", h.AddStaple)
	g.DELETE("/:id/staples/:name", h.RemoveStaple)

	g.GET("/:id/recipes", h.Recipes)

	g.GET("/:id/groceries", h.Groceries)
	g.POST("/:id/groceries", h.AddGroceries)
	g.DELETE("/:id/groceries", h.ClearGroceries)
	g.PATCH("/:id/groceries/:item", h.ToggleGrocery)
	g.DELETE("/:id/groceries/:item", h.RemoveGrocery)
}

// respond 共用的成功/失敗回應
func respond(c *gin.Context, status int, sess *coreSession.Session, err error) {
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(status, newView(sess))
}

// Create 建立新的 session
func (h *Handler) Create(c *gin.Context) {
	sess, err := h.sessions.Create(c.Request.Context())
	if err == nil {
		c.Set(handlers.ContextKeySessionID, sess.ID)
	}
	respond(c, http.StatusCreated, sess, err)
}

// Get 讀取 session
func (h *Handler) Get(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, sess, err)
}

// Delete 刪除 session
func (h *Handler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetPreferences 更新篩選偏好
func (h *Handler) SetPreferences(c *gin.Context) {
	var filters common.Filters
	if !handlers.BindJSON(c, &filters) {
		return
	}
	sess, err := h.sessions.SetPreferences(c.Request.Context(), c.Param("id"), filters)
	respond(c, http.StatusOK, sess, err)
}

// AddIngredient 手動新增食材
func (h *Handler) AddIngredient(c *gin.Context) {
	ing, ok := bindIngredient(c)
	if !ok {
		return
	}
	sess, err := h.sessions.AddIngredient(c.Request.Context(), c.Param("id"), ing)
	respond(c, http.StatusCreated, sess, err)
}

// EditIngredient 修改食材
func (h *Handler) EditIngredient(c *gin.Context) {
	ing, ok := bindIngredient(c)
	if !ok {
		return
	}
	sess, err := h.sessions.EditIngredient(c.Request.Context(), c.Param("id"), c.Param("name"), ing)
	respond(c, http.StatusOK, sess, err)
}

// RemoveIngredient 移除食材
func (h *Handler) RemoveIngredient(c *gin.Context) {
	sess, err := h.sessions.RemoveIngredient(c.Request.Context(), c.Param("id"), c.Param("name"))
	respond(c, http.StatusOK, sess, err)
}

// AddStaple 新增常備品
func (h *Handler) AddStaple(c *gin.Context) {
	ing, ok := bindIngredient(c)
	if !ok {
		return
	}
	sess, err := h.sessions.AddStaple(c.Request.Context(), c.Param("id"), ing)
	respond(c, http.StatusCreated, sess, err)
}

// RemoveStaple 移除常備品
func (h *Handler) RemoveStaple(c *gin.Context) {
	sess, err := h.sessions.RemoveStaple(c.Request.Context(), c.Param("id"), c.Param("name"))
	respond(c, http.StatusOK, sess, err)
}

// Recipes 以目前的食材與偏好重新排序上次生成的食譜
func (h *Handler) Recipes(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": sess.RankedRecipes()})
}

// Groceries 讀取購物清單
func (h *Handler) Groceries(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groceries": sess.Groceries})
}

// AddGroceries 加入購物清單
func (h *Handler) AddGroceries(c *gin.Context) {
	var req GroceryRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	var (
		sess *coreSession.Session
		err  error
	)
	switch {
	case req.RecipeID != nil:
		sess, err = h.sessions.AddMissingGroceries(ctx, id, *req.RecipeID)
	case len(req.Items) > 0:
		items := make([]common.GroceryItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, common.GroceryItem{Name: it.Name, Quantity: it.Quantity})
		}
		sess, err = h.sessions.AddGroceries(ctx, id, items)
	default:
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(nil, "items or recipe_id is required"))
		return
	}
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groceries": sess.Groceries})
}

// ToggleGrocery 切換已購買狀態
func (h *Handler) ToggleGrocery(c *gin.Context) {
	sess, err := h.sessions.ToggleGrocery(c.Request.Context(), c.Param("id"), c.Param("item"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groceries": sess.Groceries})
}

// RemoveGrocery 移除單一項目
func (h *Handler) RemoveGrocery(c *gin.Context) {
	sess, err := h.sessions.RemoveGrocery(c.Request.Context(), c.Param("id"), c.Param("item"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groceries": sess.Groceries})
}

// ClearGroceries 清空購物清單
func (h *Handler) ClearGroceries(c *gin.Context) {
	sess, err := h.sessions.ClearGroceries(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groceries": sess.Groceries})
}

func bindIngredient(c *gin.Context) (common.Ingredient, bool) {
	var req IngredientRequest
	if !handlers.BindJSON(c, &req) {
		return common.Ingredient{}, false
	}
	ing, err := req.toIngredient()
	if err != nil {
		handlers.RespondError(c, err)
		return common.Ingredient{}, false
	}
	return ing, true
}
