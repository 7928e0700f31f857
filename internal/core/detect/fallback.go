package detect

import "context"

// fallbackIngredients 無法使用偵測後端時回傳的固定清單
var fallbackIngredients = []string{
	"Tomatoes",
	"Eggs",
	"Cheese",
	"Lettuce",
	"Onions",
	"Bell peppers",
	"Chicken breast",
	"Garlic",
}

// FallbackIngredients 回傳固定清單的副本
func FallbackIngredients() []string {
	out := make([]string, len(fallbackIngredients))
	copy(out, fallbackIngredients)
	return out
}

func fallbackResult(backend string) *Result {
	return &Result{
		Ingredients: FallbackIngredients(),
		Quantities:  map[string]int{},
		Backend:     backend,
	}
}

// staticBackend 不做任何網路呼叫，mock 模式與未設定後端時使用
type staticBackend struct {
	name string
}

func (b staticBackend) Name() string { return b.name }

func (b staticBackend) Detect(_ context.Context, _ []byte, _ string) (*Result, error) {
	return fallbackResult(b.name), nil
}
