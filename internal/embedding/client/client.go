package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/embedding"
)

const (
	textPath  = "/embed/text"
	imagePath = "/embed/images"
)

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type textRequest struct {
	Texts []string `json:"texts"`
}

type imageRequest struct {
	Images []string `json:"images"`
}

type httpModel struct {
	baseURL    string
	dimension  int
	httpClient *http.Client
}

// NewHTTPModel returns a Model served by a CLIP inference service at baseURL.
// Images travel base64 encoded.
func NewHTTPModel(baseURL string, dimension int, timeout time.Duration) embedding.Model {
	return &httpModel{
		baseURL:    strings.TrimRight(baseURL, "/"),
		dimension:  dimension,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (m *httpModel) EncodeText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.post(ctx, textPath, textRequest{Texts: []string{text}}, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to encode text: %w", err)
	}
	return vectors[0], nil
}

func (m *httpModel) EncodeImages(ctx context.Context, images [][]byte) ([][]float32, error) {
	if len(images) == 0 {
		return [][]float32{}, nil
	}
	req := imageRequest{Images: make([]string, len(images))}
	for i, img := range images {
		req.Images[i] = base64.StdEncoding.EncodeToString(img)
	}
	vectors, err := m.post(ctx, imagePath, req, len(images))
	if err != nil {
		return nil, fmt.Errorf("failed to encode images: %w", err)
	}
	return vectors, nil
}

func (m *httpModel) post(ctx context.Context, path string, payload interface{}, want int) ([][]float32, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out embedResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(out.Embeddings) != want {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d inputs", len(out.Embeddings), want)
	}
	for i, v := range out.Embeddings {
		if err = embedding.CheckDimension(v, m.dimension); err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
		if err = embedding.Normalize(v); err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
	}
	return out.Embeddings, nil
}
