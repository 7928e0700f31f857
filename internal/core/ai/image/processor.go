package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"

	// 註冊解碼器
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	// ErrEmptyImage 圖片為空
	ErrEmptyImage = errors.New("image data is empty")
	// ErrNotImage 內容不是圖片
	ErrNotImage = errors.New("uploaded file is not an image")
)

// Processor 圖片處理器，在送往偵測後端之前縮小圖片
type Processor struct {
	maxEdge int
	quality int
}

// NewProcessor 創建圖片處理器
func NewProcessor(maxEdge, quality int) *Processor {
	if maxEdge <= 0 {
		maxEdge = 1024
	}
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &Processor{
		maxEdge: maxEdge,
		quality: quality,
	}
}

// Sniff 以內容判斷 MIME 類型，非圖片時回傳 ErrNotImage
func Sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	mime := http.DetectContentType(data)
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return mime, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotImage, mime)
}

// Downscale 將圖片長邊縮到 maxEdge 以內並重新編碼為 JPEG。
// 已經夠小的 JPEG 原樣回傳。
func (p *Processor) Downscale(data []byte) ([]byte, string, error) {
	mime, err := Sniff(data)
	if err != nil {
		return nil, "", err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= p.maxEdge && h <= p.maxEdge && mime == "image/jpeg" {
		return data, mime, nil
	}

	dst := src
	if w > p.maxEdge || h > p.maxEdge {
		nw, nh := scaledSize(w, h, p.maxEdge)
		canvas := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), src, bounds, draw.Over, nil)
		dst = canvas
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// scaledSize 保持比例縮放，長邊等於 maxEdge
func scaledSize(w, h, maxEdge int) (int, int) {
	if w >= h {
		nh := h * maxEdge / w
		if nh < 1 {
			nh = 1
		}
		return maxEdge, nh
	}
	nw := w * maxEdge / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxEdge
}
