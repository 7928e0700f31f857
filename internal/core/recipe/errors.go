package recipe

import (
	"net/http"

	"pantry-pal/internal/pkg/common"
)

// 食譜生成錯誤，訊息直接顯示給使用者
var (
	ErrMissingCredential = common.NewError("MISSING_CREDENTIAL",
		"Server missing GEMINI_API_KEY", http.StatusInternalServerError, nil)

	ErrNoIngredients = common.NewError("NO_INGREDIENTS",
		"No ingredients provided", http.StatusBadRequest, nil)

	ErrRateLimited = common.NewError("GENERATION_RATE_LIMITED",
		"Gemini API limit reached. Showing fallback recipes. Please try again shortly.", http.StatusTooManyRequests, nil)

	ErrGenerationTimeout = common.NewError("GENERATION_TIMEOUT",
		"Recipe generation timed out. Showing fallback recipes. Please try again.", http.StatusGatewayTimeout, nil)

	ErrGenerationFailed = common.NewError("GENERATION_FAILED",
		"Recipe generation failed. Showing fallback recipes.", http.StatusInternalServerError, nil)
)
