package imagegen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/IbbyMan/citypane/internal/models"
)

// TestClassify verifies the provider error taxonomy: quota markers win, model
// unavailability is retryable, everything else is fatal.
func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		body string
		want FailureClass
	}{
		{"no active servers", "No active servers available for model flux", FailureRetryable},
		{"case insensitive servers", "NO ACTIVE SERVERS for zimage", FailureRetryable},
		{"model not allowed", "model seedream not allowed for this tier", FailureRetryable},
		{"quota", "Quota reached for this key", FailureQuota},
		{"exceeded", "daily limit exceeded", FailureQuota},
		{"insufficient", "insufficient funds", FailureQuota},
		{"balance", "your balance is empty", FailureQuota},
		{"pollen", "not enough pollen remaining", FailureQuota},
		{"credits", "out of credits", FailureQuota},
		{"quota beats retryable wording", "no active servers, quota exceeded", FailureQuota},
		{"bad request", "invalid prompt parameter", FailureFatal},
		{"empty body", "", FailureFatal},
		{"servers without no active", "servers restarting", FailureFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.body); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

// TestProviderError_IsQuota verifies that quota-classified provider errors
// match the ErrQuotaExhausted sentinel through errors.Is.
func TestProviderError_IsQuota(t *testing.T) {
	err := &ProviderError{Status: 402, Body: "out of pollen", Class: FailureQuota, Model: "flux"}
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Error("quota ProviderError should match ErrQuotaExhausted")
	}

	retryable := &ProviderError{Status: 503, Body: "no active servers", Class: FailureRetryable, Model: "flux"}
	if errors.Is(retryable, ErrQuotaExhausted) {
		t.Error("retryable ProviderError must not match ErrQuotaExhausted")
	}
}

// newTestClient builds a client pointed at a stub server with a fixed seed
// source so tests can assert on seeds.
func newTestClient(t *testing.T, srvURL string, seeds ...int64) *PollinationsClient {
	t.Helper()
	c := NewPollinationsClient("test-key", srvURL, "", nil, 5*time.Second, zap.NewNop())
	i := 0
	c.seedFn = func() int64 {
		s := seeds[i%len(seeds)]
		i++
		return s
	}
	return c
}

// TestGenerate_Success verifies the happy path: bearer auth, query parameters,
// and the data URL result with the provider's content type.
func TestGenerate_Success(t *testing.T) {
	// Arrange: stub provider returning image bytes
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 777)

	// Act
	result, err := client.Generate(context.Background(), models.GenerationRequest{
		Prompt:         "a window view",
		NegativePrompt: "blurry",
		Width:          512,
		Height:         512,
	})

	// Assert
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want bearer key", gotAuth)
	}
	for _, want := range []string{"model=flux", "width=512", "height=512", "seed=777", "nologo=true", "private=true", "negative_prompt=blurry"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if !strings.HasPrefix(result.ImageURL, "data:image/png;base64,") {
		t.Errorf("ImageURL = %q, want png data URL", result.ImageURL)
	}
	if result.Model != "flux" || result.FallbackUsed {
		t.Errorf("result = %+v, want primary model without fallback", result)
	}
	if result.Seed != 777 {
		t.Errorf("Seed = %d, want 777", result.Seed)
	}
}

// TestGenerate_DefaultSize verifies the portrait default applied when the
// request omits dimensions.
func TestGenerate_DefaultSize(t *testing.T) {
	// Arrange: stub provider capturing the query
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte("bytes"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	// Act
	_, err := client.Generate(context.Background(), models.GenerationRequest{Prompt: "a window view"})

	// Assert
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, want := range []string{"width=512", "height=768"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

// TestGenerate_FallbackOnRetryable verifies the fallback walk: a retryable
// failure of the preferred model moves to the next model with a fresh seed,
// and the result reports fallbackUsed.
func TestGenerate_FallbackOnRetryable(t *testing.T) {
	// Arrange: flux fails retryably, seedream succeeds
	var tried []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		model := r.URL.Query().Get("model")
		tried = append(tried, model)
		if model == "flux" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("No active servers available for model flux"))
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1, 2)

	// Act
	result, err := client.Generate(context.Background(), models.GenerationRequest{Prompt: "p"})

	// Assert
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(tried) != 2 || tried[0] != "flux" || tried[1] != "seedream" {
		t.Errorf("models tried = %v, want [flux seedream]", tried)
	}
	if !result.FallbackUsed || result.Model != "seedream" {
		t.Errorf("result = %+v, want fallback to seedream", result)
	}
	if result.Seed != 2 {
		t.Errorf("Seed = %d, want fresh seed 2 for the fallback attempt", result.Seed)
	}
}

// TestGenerate_QuotaShortCircuits verifies that a quota error stops the
// fallback walk immediately and maps to ErrQuotaExhausted.
func TestGenerate_QuotaShortCircuits(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte("not enough pollen remaining"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	_, err := client.Generate(context.Background(), models.GenerationRequest{Prompt: "p"})

	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("Generate() error = %v, want ErrQuotaExhausted", err)
	}
	if calls != 1 {
		t.Errorf("provider called %d times, want 1 (no fallback after quota)", calls)
	}
}

// TestGenerate_AllModelsUnavailable verifies that exhausting the fallback list
// returns AllModelsUnavailableError listing every tried model.
func TestGenerate_AllModelsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("No active servers available for model " + r.URL.Query().Get("model")))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	_, err := client.Generate(context.Background(), models.GenerationRequest{Prompt: "p"})

	var allModels *AllModelsUnavailableError
	if !errors.As(err, &allModels) {
		t.Fatalf("Generate() error = %v, want AllModelsUnavailableError", err)
	}
	want := []string{"flux", "seedream", "nanobanana", "zimage"}
	if len(allModels.TriedModels) != len(want) {
		t.Fatalf("TriedModels = %v, want %v", allModels.TriedModels, want)
	}
	for i, m := range want {
		if allModels.TriedModels[i] != m {
			t.Errorf("TriedModels[%d] = %q, want %q", i, allModels.TriedModels[i], m)
		}
	}
}

// TestGenerate_FatalStopsImmediately verifies that a fatal (unclassified)
// provider error does not trigger fallback.
func TestGenerate_FatalStopsImmediately(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid prompt parameter"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	_, err := client.Generate(context.Background(), models.GenerationRequest{Prompt: "p"})

	var provErr *ProviderError
	if !errors.As(err, &provErr) || provErr.Class != FailureFatal {
		t.Fatalf("Generate() error = %v, want fatal ProviderError", err)
	}
	if calls != 1 {
		t.Errorf("provider called %d times, want 1", calls)
	}
}

// TestGenerate_ExplicitSeedAndModel verifies that a caller-supplied seed and
// model are honored on the first attempt.
func TestGenerate_ExplicitSeedAndModel(t *testing.T) {
	var gotModel, gotSeed string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotModel = r.URL.Query().Get("model")
		gotSeed = r.URL.Query().Get("seed")
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 999)

	result, err := client.Generate(context.Background(), models.GenerationRequest{
		Prompt: "p", Model: "zimage", Seed: 42,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gotModel != "zimage" || gotSeed != "42" {
		t.Errorf("provider saw model=%q seed=%q, want zimage/42", gotModel, gotSeed)
	}
	if result.Seed != 42 || result.Model != "zimage" || result.FallbackUsed {
		t.Errorf("result = %+v, want explicit model and seed", result)
	}
}

// TestGenerate_MissingAPIKey verifies the configured-key guard.
func TestGenerate_MissingAPIKey(t *testing.T) {
	client := NewPollinationsClient("", "http://unused", "", nil, time.Second, zap.NewNop())

	_, err := client.Generate(context.Background(), models.GenerationRequest{Prompt: "p"})

	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Generate() error = %v, want ErrMissingAPIKey", err)
	}
}
