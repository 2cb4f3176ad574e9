package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// bearerTransport injects a bearer token into every request. Ollama behind a
// reverse proxy often wants one even though the bare server ignores it.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// ServerClient talks to the Ollama management API (health, model listing,
// model unload). Translation traffic goes through OllamaBackend instead; this
// client covers the endpoints langchaingo does not expose.
type ServerClient struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewServerClient builds a client for the server at baseURL. token may be
// empty.
func NewServerClient(baseURL, token string) *ServerClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = log
	if token != "" {
		rc.HTTPClient.Transport = &bearerTransport{token: token, base: rc.HTTPClient.Transport}
	}
	return &ServerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    rc,
	}
}

// HealthCheck verifies the server answers at all.
func (c *ServerClient) HealthCheck(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransientError{Err: fmt.Errorf("backend unreachable at %s: %w", c.baseURL, err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend health check returned %d", resp.StatusCode)
	}
	return nil
}

// ModelInfo is one installed model as reported by the server.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ListModels returns the models installed on the server.
func (c *ServerClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing models: server returned %d", resp.StatusCode)
	}

	var payload struct {
		Models []ModelInfo `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding model list: %w", err)
	}
	return payload.Models, nil
}

// HasModel reports whether the named model is installed.
func (c *ServerClient) HasModel(ctx context.Context, model string) (bool, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if m.Name == model || strings.SplitN(m.Name, ":", 2)[0] == model {
			return true, nil
		}
	}
	return false, nil
}

// UnloadModel asks the server to release the model's memory immediately.
// Useful between documents when several models share one GPU.
func (c *ServerClient) UnloadModel(ctx context.Context, model string) error {
	body, err := json.Marshal(map[string]any{
		"model":      model,
		"keep_alive": 0,
	})
	if err != nil {
		return err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("unloading model %s: %w", model, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unloading model %s: server returned %d", model, resp.StatusCode)
	}
	log.Infof("requested unload of model %s", model)
	return nil
}
