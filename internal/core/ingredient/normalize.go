// Package ingredient 處理食材名稱的正規化、比對與分類。
package ingredient

import "strings"

// Normalize 回傳食材的正規名稱：小寫、底線轉空白、去頭尾空白。
// 兩個食材名稱只有在正規名稱相同時才視為同一食材。
// 底線先於 trim 處理，"_egg_" 這類輸入也能保持冪等。
func Normalize(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(raw), "_", " "))
}

// Slug 將正規名稱中的連續空白轉為 "-"，作為購物清單 ID
func Slug(raw string) string {
	return strings.Join(strings.Fields(Normalize(raw)), "-")
}

// Dedupe 依正規名稱去重，保留第一次出現的原始名稱與順序；空白名稱會被略過
func Dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		key := Normalize(name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
