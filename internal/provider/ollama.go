// Package provider contains adapters for the LLM and embedding backends.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	ollamaDefaultBase  = "http://localhost:11434"
	ollamaDefaultModel = "mistral"
	ollamaMaxRetries   = 3
)

// Ollama implements domain.Provider against the Ollama generate API.
type Ollama struct {
	apiBase     string
	model       string
	temperature float64
	client      *http.Client
	logger      *slog.Logger
}

type OllamaConfig struct {
	APIBase     string
	Model       string
	Temperature float64
	Client      *http.Client
	Logger      *slog.Logger
}

func NewOllama(cfg OllamaConfig) *Ollama {
	if cfg.APIBase == "" {
		cfg.APIBase = ollamaDefaultBase
	}
	if cfg.Model == "" {
		cfg.Model = ollamaDefaultModel
	}
	if cfg.Client == nil {
		cfg.Client = SharedHTTPClient(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Ollama{
		apiBase:     cfg.APIBase,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		client:      cfg.Client,
		logger:      cfg.Logger.With("component", "ollama"),
	}
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", o.apiBase+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// generateRequest matches the Ollama /api/generate request body.
type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate produces a completion for a single composed prompt, retrying
// transient failures (connection refused, 5xx, malformed body) with a
// quadratic backoff.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
	}
	if o.temperature > 0 {
		body.Options = map[string]any{"temperature": o.temperature}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var genResp generateResponse
	for attempt := 0; attempt <= ollamaMaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			o.logger.Warn("retrying ollama request", "attempt", attempt+1, "backoff", backoff)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, "POST", o.apiBase+"/api/generate", bytes.NewReader(jsonBody))
		if err != nil {
			return "", fmt.Errorf("new request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := o.client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if attempt < ollamaMaxRetries {
				o.logger.Warn("ollama request failed, will retry", "err", err)
				continue
			}
			return "", fmt.Errorf("ollama request (after %d retries): %w", ollamaMaxRetries, err)
		}

		if resp.StatusCode >= 500 {
			respBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if attempt < ollamaMaxRetries {
				o.logger.Warn("ollama server error, will retry", "status", resp.StatusCode, "body", string(respBody))
				continue
			}
			return "", fmt.Errorf("ollama returned %d (after %d retries): %s", resp.StatusCode, ollamaMaxRetries, string(respBody))
		}

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, string(respBody))
		}

		err = json.NewDecoder(resp.Body).Decode(&genResp)
		resp.Body.Close()
		if err != nil {
			if attempt < ollamaMaxRetries {
				o.logger.Warn("ollama decode error, will retry", "err", err)
				continue
			}
			return "", fmt.Errorf("decode response (after %d retries): %w", ollamaMaxRetries, err)
		}
		break
	}

	return genResp.Response, nil
}
