package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/IbbyMan/citypane/internal/models"
	"github.com/IbbyMan/citypane/internal/observability"
)

// Generator produces an image for a prompt.
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error)
}

const (
	// DefaultModel is the preferred image model.
	DefaultModel = "flux"

	// DefaultBaseURL is the Pollinations image endpoint.
	DefaultBaseURL = "https://gen.pollinations.ai"

	defaultWidth  = 512
	defaultHeight = 768
)

// DefaultFallbackModels are tried in order when the preferred model fails
// retryably.
var DefaultFallbackModels = []string{"seedream", "nanobanana", "zimage"}

var ErrMissingAPIKey = errors.New("image provider API key not configured")

// PollinationsClient implements Generator against the Pollinations image API.
// On a retryable failure of the preferred model it walks the fallback list;
// quota exhaustion stops the walk immediately since no model can succeed
// without credits.
type PollinationsClient struct {
	apiKey         string
	baseURL        string
	defaultModel   string
	fallbackModels []string
	client         *http.Client
	logger         *zap.Logger
	seedFn         func() int64
}

// NewPollinationsClient creates a client. baseURL, defaultModel, and
// fallbackModels fall back to package defaults when empty; apiKey may be
// empty, in which case Generate fails with ErrMissingAPIKey.
func NewPollinationsClient(apiKey, baseURL, defaultModel string, fallbackModels []string, timeout time.Duration, logger *zap.Logger) *PollinationsClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	if fallbackModels == nil {
		fallbackModels = DefaultFallbackModels
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &PollinationsClient{
		apiKey:         apiKey,
		baseURL:        baseURL,
		defaultModel:   defaultModel,
		fallbackModels: fallbackModels,
		client:         &http.Client{Timeout: timeout},
		logger:         logger,
		seedFn: func() int64 {
			return rand.Int63n(1_000_000)
		},
	}
}

// Generate implements Generator. The preferred model is req.Model (default
// DefaultModel); a fresh seed is drawn unless req.Seed is set. The returned
// image URL is a base64 data URL so callers never touch provider URLs.
func (c *PollinationsClient) Generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	if c.apiKey == "" {
		return models.GenerationResult{}, ErrMissingAPIKey
	}

	preferred := req.Model
	if preferred == "" {
		preferred = c.defaultModel
	}
	if req.Width <= 0 {
		req.Width = defaultWidth
	}
	if req.Height <= 0 {
		req.Height = defaultHeight
	}

	candidates := []string{preferred}
	for _, m := range c.fallbackModels {
		if m != preferred {
			candidates = append(candidates, m)
		}
	}

	var (
		tried   []string
		lastErr error
	)
	for i, model := range candidates {
		// Each attempt gets its own seed so a fallback model does not inherit
		// a seed that may interact badly with the failed one.
		seed := req.Seed
		if seed == 0 || i > 0 {
			seed = c.seedFn()
		}

		tried = append(tried, model)
		if i > 0 {
			observability.ImageGenFallbacksTotal.Inc()
			c.logger.Info("falling back to alternate image model",
				zap.String("model", model),
				zap.NamedError("previousError", lastErr))
		}

		imageURL, err := c.callProvider(ctx, req, model, seed)
		if err == nil {
			return models.GenerationResult{
				ImageURL:     imageURL,
				Seed:         seed,
				Model:        model,
				FallbackUsed: i > 0,
			}, nil
		}
		lastErr = err

		var provErr *ProviderError
		if errors.As(err, &provErr) {
			switch provErr.Class {
			case FailureQuota:
				return models.GenerationResult{}, fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
			case FailureRetryable:
				continue
			}
		}
		return models.GenerationResult{}, err
	}

	return models.GenerationResult{}, &AllModelsUnavailableError{TriedModels: tried, LastErr: lastErr}
}

func (c *PollinationsClient) callProvider(ctx context.Context, req models.GenerationRequest, model string, seed int64) (string, error) {
	start := time.Now()

	endpoint := c.baseURL + "/image/" + url.PathEscape(req.Prompt)
	params := url.Values{}
	params.Set("model", model)
	params.Set("width", strconv.Itoa(req.Width))
	params.Set("height", strconv.Itoa(req.Height))
	params.Set("seed", strconv.FormatInt(seed, 10))
	params.Set("nologo", "true")
	params.Set("private", "true")
	if req.NegativePrompt != "" {
		params.Set("negative_prompt", req.NegativePrompt)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		observability.ImageGenCallsTotal.WithLabelValues(model, "error").Inc()
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		observability.ImageGenCallsTotal.WithLabelValues(model, "error").Inc()
		observability.ImageGenDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.ImageGenCallsTotal.WithLabelValues(model, "error").Inc()
		return "", fmt.Errorf("read response body: %w", err)
	}

	observability.ImageGenDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		provErr := &ProviderError{
			Status: resp.StatusCode,
			Body:   string(body),
			Class:  Classify(string(body)),
			Model:  model,
		}
		observability.ImageGenCallsTotal.WithLabelValues(model, string(provErr.Class)).Inc()
		return "", provErr
	}

	observability.ImageGenCallsTotal.WithLabelValues(model, "success").Inc()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}
