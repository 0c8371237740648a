package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"framecheck/internal/models"
)

// DefaultGeminiURL is the generateContent endpoint used when none is configured
const DefaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// Sampling parameters sent with every provider request
const (
	providerTemperature = 0.4
	providerTopP        = 0.9
	providerTopK        = 40
)

// MinProviderFPS is the lower bound applied to a provider answer
const MinProviderFPS = 10

// maxErrorBody caps how much of a failed response body is kept
const maxErrorBody = 4096

var nonDigits = regexp.MustCompile(`\D`)

// ProviderQuery is everything the provider is told about one estimation
type ProviderQuery struct {
	Hardware   models.HardwareProfile
	Game       string
	Resolution string
	Quality    string
	BaseFPS    int
}

// EstimationProvider produces an fps estimate from a remote model
type EstimationProvider interface {
	EstimateFPS(ctx context.Context, query ProviderQuery) (int, error)
}

// GeminiConfig configures the Gemini generateContent client
type GeminiConfig struct {
	APIKey     string
	URL        string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// GeminiClient asks a Gemini model for a single integer fps estimate
type GeminiClient struct {
	cfg       GeminiConfig
	telemetry *Telemetry
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
	TopK        int     `json:"topK"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiClient builds a client; URL and HTTP client fall back to defaults
func NewGeminiClient(cfg GeminiConfig, telemetry *Telemetry) *GeminiClient {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = DefaultGeminiURL
	}
	return &GeminiClient{cfg: cfg, telemetry: telemetry}
}

// BuildPrompt renders the deterministic instruction sent to the provider
func BuildPrompt(q ProviderQuery) string {
	orUnknown := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "unknown"
		}
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	b.WriteString("You estimate PC gaming performance.\n")
	b.WriteString("Estimate the average frames per second for this setup.\n\n")
	fmt.Fprintf(&b, "Game: %s\n", q.Game)
	fmt.Fprintf(&b, "Resolution: %s\n", q.Resolution)
	fmt.Fprintf(&b, "Quality preset: %s\n", q.Quality)
	fmt.Fprintf(&b, "CPU: %s\n", orUnknown(q.Hardware.CPU))
	fmt.Fprintf(&b, "GPU: %s\n", orUnknown(q.Hardware.GPU))
	fmt.Fprintf(&b, "RAM: %s\n\n", orUnknown(q.Hardware.RAM))
	fmt.Fprintf(&b, "A mid-range reference build averages %d FPS at these settings.\n", q.BaseFPS)
	b.WriteString("Reply with a single integer only, with no words or units.\n")
	fmt.Fprintf(&b, "The answer must not exceed %d.\n", q.BaseFPS*MaxBaselineGain)
	b.WriteString("If any hardware detail is missing or unknown, be conservative.")
	return b.String()
}

// EstimateFPS calls the provider. Rate limits, server errors, timeouts,
// transport failures and unparseable answers come back as soft-fallback
// errors (see IsSoftFallback); any other non-success status is a hard
// *ProviderError carrying the status and body.
func (g *GeminiClient) EstimateFPS(ctx context.Context, q ProviderQuery) (int, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: BuildPrompt(q)}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature: providerTemperature,
			TopP:        providerTopP,
			TopK:        providerTopK,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The key travels in a header so it never shows up in logged URLs.
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	start := time.Now()
	res, err := g.cfg.HTTPClient.Do(req)
	if err != nil {
		g.telemetry.providerCall("transport_error", time.Since(start))
		log.Printf("[PROVIDER] Request failed after %v: %v", time.Since(start), err)
		return 0, &ProviderError{Transient: true, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		perr := newStatusError(res.StatusCode, strings.TrimSpace(string(body)))
		outcome := "rejected"
		if perr.Transient {
			outcome = "unavailable"
		}
		g.telemetry.providerCall(outcome, time.Since(start))
		log.Printf("[PROVIDER] Status %d (transient=%v)", res.StatusCode, perr.Transient)
		return 0, perr
	}

	var decoded geminiResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		g.telemetry.providerCall("unparseable", time.Since(start))
		return 0, fmt.Errorf("decode provider response: %v: %w", err, ErrUnparseableAnswer)
	}

	fps, err := ParseFPSAnswer(decoded.firstText(), q.BaseFPS)
	if err != nil {
		g.telemetry.providerCall("unparseable", time.Since(start))
		return 0, err
	}
	g.telemetry.providerCall("ok", time.Since(start))
	return fps, nil
}

// firstText returns the first text segment of the first candidate
func (r geminiResponse) firstText() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}

// ParseFPSAnswer strips every non-digit from a provider answer and clamps
// the number to [10, 2*baseFps]. Empty and zero answers are
// ErrUnparseableAnswer; numbers too large for an int saturate before the clamp.
func ParseFPSAnswer(text string, baseFps int) (int, error) {
	digits := nonDigits.ReplaceAllString(text, "")
	if digits == "" {
		return 0, ErrUnparseableAnswer
	}
	n, err := strconv.Atoi(digits)
	if errors.Is(err, strconv.ErrRange) {
		n, err = math.MaxInt, nil
	}
	if err != nil || n == 0 {
		return 0, ErrUnparseableAnswer
	}
	return clampRound(float64(n), MinProviderFPS, float64(baseFps*MaxBaselineGain)), nil
}
