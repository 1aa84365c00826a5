package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func TestEncodeText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, textPath, r.URL.Path)
		var req textRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"a red car"}, req.Texts)
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{3, 4, 0}}})
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL+"/", 3, time.Second)
	v, err := m.EncodeText(context.Background(), "a red car")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.InDelta(t, 1.0, norm(v), 1e-6)
}

func TestEncodeImagesPreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, imagePath, r.URL.Path)
		var req imageRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		out := embedResponse{}
		for _, img := range req.Images {
			raw, err := base64.StdEncoding.DecodeString(img)
			assert.NoError(t, err)
			out.Embeddings = append(out.Embeddings, []float32{float32(raw[0]), 1})
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, 2, time.Second)
	vs, err := m.EncodeImages(context.Background(), [][]byte{{1}, {7}, {3}})
	require.NoError(t, err)
	require.Len(t, vs, 3)
	assert.Greater(t, vs[1][0], vs[2][0])
	assert.Greater(t, vs[2][0], vs[0][0])
	for _, v := range vs {
		assert.InDelta(t, 1.0, norm(v), 1e-6)
	}
}

func TestEncodeImagesErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"wrong count", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1, 0}}})
		}},
		{"wrong dimension", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1, 0, 0}, {1, 0, 0}}})
		}},
		{"zero vector", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{0, 0}, {1, 0}}})
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			_, err := NewHTTPModel(srv.URL, 2, time.Second).EncodeImages(context.Background(), [][]byte{{1}, {2}})
			require.Error(t, err)
		})
	}
}
