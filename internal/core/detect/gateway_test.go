package detect

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	aiimage "pantry-pal/internal/core/ai/image"
	"pantry-pal/internal/infrastructure/config"
	"pantry-pal/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 32))))
	return buf.Bytes()
}

func detectionConfig() config.DetectionConfig {
	return config.DetectionConfig{
		Roboflow: config.RoboflowConfig{
			Confidence: 40,
			Timeout:    2 * time.Second,
		},
		Microservice: config.MicroserviceConfig{
			Timeout: 2 * time.Second,
		},
	}
}

func newGateway(cfg config.DetectionConfig) *Gateway {
	return NewGateway(cfg, aiimage.NewProcessor(1024, 80))
}

func TestMockModeMakesNoNetworkCall(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	cfg := detectionConfig()
	cfg.MockMode = true
	cfg.Roboflow.Model = "pantry/1"
	cfg.Roboflow.APIKey = "key"
	cfg.Roboflow.Endpoint = srv.URL
	cfg.Microservice.URL = srv.URL

	g := newGateway(cfg)
	res, err := g.Detect(context.Background(), []byte("anything"), "fridge.jpg")
	require.NoError(t, err)

	assert.Equal(t, BackendMock, res.Backend)
	assert.Equal(t, FallbackIngredients(), res.Ingredients)
	assert.Len(t, res.Ingredients, 8)
	assert.Empty(t, res.Quantities)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestNoBackendConfiguredReturnsFallback(t *testing.T) {
	g := newGateway(detectionConfig())
	res, err := g.Detect(context.Background(), testPNG(t), "")
	require.NoError(t, err)
	assert.Equal(t, BackendFallback, res.Backend)
	assert.Equal(t, "Tomatoes", res.Ingredients[0])
}

func TestRoboflowCountsLabels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pantry/1", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "40", r.URL.Query().Get("confidence"))

		body, _ := io.ReadAll(r.Body)
		_, err := base64.StdEncoding.DecodeString(string(body))
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predictions":[
			{"class":"Egg"},
			{"class_name":"tomato"},
			{"label":"egg"},
			"garbage",
			{"class":"  "},
			{"class":"Green_Onion"}
		]}`))
	}))
	defer srv.Close()

	cfg := detectionConfig()
	cfg.Roboflow.Model = "pantry/1"
	cfg.Roboflow.APIKey = "secret"
	cfg.Roboflow.Endpoint = srv.URL

	res, err := newGateway(cfg).Detect(context.Background(), testPNG(t), "fridge.png")
	require.NoError(t, err)

	assert.Equal(t, BackendRoboflow, res.Backend)
	assert.Equal(t, []string{"Egg", "tomato", "Green_Onion"}, res.Ingredients)
	assert.Equal(t, map[string]int{"egg": 2, "tomato": 1, "green onion": 1}, res.Quantities)
}

func TestRoboflowFailuresFallBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"predictions":`))
			},
		},
		{
			name: "payload too large",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			cfg := detectionConfig()
			cfg.Roboflow.Model = "pantry/1"
			cfg.Roboflow.APIKey = "secret"
			cfg.Roboflow.Endpoint = srv.URL

			res, err := newGateway(cfg).Detect(context.Background(), testPNG(t), "")
			require.NoError(t, err)
			assert.Equal(t, BackendFallback, res.Backend)
			assert.Equal(t, FallbackIngredients(), res.Ingredients)
		})
	}
}

func TestRoboflowUndecodableImageFallsBack(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	cfg := detectionConfig()
	cfg.Roboflow.Model = "pantry/1"
	cfg.Roboflow.APIKey = "secret"
	cfg.Roboflow.Endpoint = srv.URL

	heic := []byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00mif1heic")
	res, err := newGateway(cfg).Detect(context.Background(), heic, "IMG_0001.HEIC")
	require.NoError(t, err)
	assert.Equal(t, BackendFallback, res.Backend)
	assert.Equal(t, FallbackIngredients(), res.Ingredients)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestRoboflowUnreachableFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	cfg := detectionConfig()
	cfg.Roboflow.Model = "pantry/1"
	cfg.Roboflow.APIKey = "secret"
	cfg.Roboflow.Endpoint = endpoint

	res, err := newGateway(cfg).Detect(context.Background(), testPNG(t), "")
	require.NoError(t, err)
	assert.Equal(t, BackendFallback, res.Backend)
}

func TestMicroserviceSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		assert.Equal(t, "fridge.jpg", header.Filename)

		_, _ = w.Write([]byte(`{"ingredients":["egg","milk"],"quantities":{"egg":3}}`))
	}))
	defer srv.Close()

	cfg := detectionConfig()
	cfg.Microservice.URL = srv.URL

	res, err := newGateway(cfg).Detect(context.Background(), []byte("jpeg bytes"), "fridge.jpg")
	require.NoError(t, err)
	assert.Equal(t, BackendMicroservice, res.Backend)
	assert.Equal(t, []string{"egg", "milk"}, res.Ingredients)
	assert.Equal(t, map[string]int{"egg": 3}, res.Quantities)
}

func TestMicroserviceLabelsAndDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/labels":
			_, _ = w.Write([]byte(`{"labels":["rice"],"quantities":"n/a"}`))
			return
		case "/mixed":
			_, _ = w.Write([]byte(`{"ingredients":{"tofu":1},"labels":["tofu"]}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := detectionConfig()
	cfg.Microservice.URL = srv.URL + "/labels"
	res, err := newGateway(cfg).Detect(context.Background(), []byte("x"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"rice"}, res.Ingredients)
	assert.Empty(t, res.Quantities)

	cfg.Microservice.URL = srv.URL + "/mixed"
	res, err = newGateway(cfg).Detect(context.Background(), []byte("x"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"tofu"}, res.Ingredients)

	cfg.Microservice.URL = srv.URL + "/empty"
	res, err = newGateway(cfg).Detect(context.Background(), []byte("x"), "")
	require.NoError(t, err)
	assert.NotNil(t, res.Ingredients)
	assert.Empty(t, res.Ingredients)
}

func TestMicroserviceTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := detectionConfig()
	cfg.Microservice.URL = srv.URL
	cfg.Microservice.Timeout = 50 * time.Millisecond

	_, err := newGateway(cfg).Detect(context.Background(), []byte("x"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDetectionTimeout))
	assert.Equal(t, http.StatusGatewayTimeout, common.AsCustomError(err).Status)
}

func TestMicroserviceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("model not loaded"))
	}))
	defer srv.Close()

	cfg := detectionConfig()
	cfg.Microservice.URL = srv.URL

	_, err := newGateway(cfg).Detect(context.Background(), []byte("x"), "")
	require.Error(t, err)

	ce := common.AsCustomError(err)
	assert.Equal(t, http.StatusBadGateway, ce.Status)
	assert.Equal(t, "model not loaded", ce.Details)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
}

func TestServerlessLoopbackSkipped(t *testing.T) {
	cfg := detectionConfig()
	cfg.Serverless = true
	cfg.Microservice.URL = "http://127.0.0.1:8000/detect"

	g := newGateway(cfg)
	assert.Equal(t, BackendFallback, g.Backend())

	cfg.Serverless = false
	assert.Equal(t, BackendMicroservice, newGateway(cfg).Backend())
}

func TestIsLoopbackURL(t *testing.T) {
	assert.True(t, IsLoopbackURL("http://localhost:8000/detect"))
	assert.True(t, IsLoopbackURL("http://127.0.0.1/detect"))
	assert.True(t, IsLoopbackURL("http://[::1]:8000"))
	assert.False(t, IsLoopbackURL("https://yolo.example.com/detect"))
	assert.False(t, IsLoopbackURL("http://10.0.0.5:8000"))
}

func TestCountLabels(t *testing.T) {
	ingredients, quantities := CountLabels([]string{"Egg", "EGG ", "", "milk"})
	assert.Equal(t, []string{"Egg", "milk"}, ingredients)
	assert.Equal(t, map[string]int{"egg": 2, "milk": 1}, quantities)
}
