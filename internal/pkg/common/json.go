package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoJSON 模型輸出中找不到 JSON
var ErrNoJSON = errors.New("response did not contain valid JSON")

// ParseJSON 解析 JSON 字符串到結構體，不允許結尾有多餘資料
func ParseJSON(data string, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

// ExtractJSON 從模型輸出中取出 JSON 片段。
// 以第一個 '{' 或 '[' 決定型別，截取到最後一個對應的結尾括號；
// 前後的 markdown fence 或說明文字都會被去除。
func ExtractJSON(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	start := strings.IndexAny(trimmed, "{[")
	if start == -1 {
		return "", ErrNoJSON
	}

	closing := "}"
	if trimmed[start] == '[' {
		closing = "]"
	}
	end := strings.LastIndex(trimmed, closing)
	if end <= start {
		return "", ErrNoJSON
	}
	return trimmed[start : end+1], nil
}

// IsJSONArray 判斷片段是否為陣列
func IsJSONArray(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "[")
}
