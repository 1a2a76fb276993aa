package collector

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OllamaClient queries a local Ollama daemon for its loaded models.
type OllamaClient struct {
	baseURL string
	client  *http.Client
}

// NewOllamaClient creates a client for the daemon at baseURL.
func NewOllamaClient(baseURL string) *OllamaClient {
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 3 * time.Second},
	}
}

type ollamaPSResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// LoadedModels returns the names of models currently resident in memory.
// An unreachable or misbehaving daemon yields an empty set, never an error.
func (o *OllamaClient) LoadedModels(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/ps", nil)
	if err != nil {
		return []string{}
	}

	resp, err := o.client.Do(req)
	if err != nil {
		slog.Debug("querying ollama", "error", err)
		return []string{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return []string{}
	}

	var ps ollamaPSResponse
	if err := json.NewDecoder(resp.Body).Decode(&ps); err != nil {
		slog.Debug("decoding ollama response", "error", err)
		return []string{}
	}

	names := make([]string, 0, len(ps.Models))
	for _, m := range ps.Models {
		names = append(names, m.Name)
	}
	return names
}
