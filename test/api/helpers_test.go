package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// testConfig is read from the environment so the suite can target any
// deployment.
type testConfig struct {
	BaseURL string        `envconfig:"API_URL" default:"http://localhost:8080"`
	Timeout time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
}

var cfg testConfig

type apiError struct {
	Code    int    `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *apiError       `json:"error,omitempty"`
}

type testResponse struct {
	StatusCode int
	Body       apiResponse
}

func (r testResponse) decode(t *testing.T, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Data, out); err != nil {
		t.Fatalf("failed to decode response data: %v", err)
	}
}

func loadConfig(t *testing.T) {
	t.Helper()
	if err := envconfig.Process("", &cfg); err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}
}

// requireServer skips the test when no server answers at the base URL.
func requireServer(t *testing.T) {
	t.Helper()
	loadConfig(t)

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(cfg.BaseURL + "/health")
	if err != nil {
		t.Skipf("api server not reachable at %s: %v", cfg.BaseURL, err)
	}
	resp.Body.Close()
}

func makeRequest(t *testing.T, method, path string, body interface{}, token string) testResponse {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(payload)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, cfg.BaseURL+"/api/v1"+path, reqBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response from %s %s: %v", method, path, err)
	}
	return testResponse{StatusCode: resp.StatusCode, Body: envelope}
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@example.com", prefix, time.Now().UnixNano())
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}
