package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framecheck/internal/config"
	"framecheck/internal/models"
	"framecheck/internal/services"
)

const bundledCatalog = "../../data/games.json"

type fakeSource struct {
	host *models.HostHardware
	err  error
}

func (f fakeSource) Detect(context.Context) (*models.HostHardware, error) {
	return f.host, f.err
}

func localOnly(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
}

func run(t *testing.T, source services.HardwareSource, args ...string) (string, error) {
	t.Helper()
	cmd := newCommand(source)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEstimateCommand(t *testing.T) {
	localOnly(t)

	out, err := run(t, fakeSource{}, "estimate",
		"--catalog", bundledCatalog,
		"--game", "elden ring",
		"--gpu", "RTX 3060",
		"--resolution", "1080p",
		"--quality", "high")
	require.NoError(t, err)

	var resp models.EstimationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 66, resp.FPS)
	assert.True(t, resp.Estimated)
}

func TestEstimateCommandDetect(t *testing.T) {
	localOnly(t)
	source := fakeSource{host: &models.HostHardware{
		Profile: models.HardwareProfile{CPU: "AMD Ryzen 5 5600X", GPU: "NVIDIA GeForce RTX 3060", RAM: "16GB"},
	}}

	out, err := run(t, source, "estimate", "--catalog", bundledCatalog, "--game", "Elden Ring", "--detect")
	require.NoError(t, err)

	var resp models.EstimationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	// 60 * 1.1 (3060) * 0.95 (5600)
	assert.Equal(t, 63, resp.FPS)
}

func TestEstimateCommandDetectFindsNothing(t *testing.T) {
	localOnly(t)
	source := fakeSource{host: &models.HostHardware{}}

	_, err := run(t, source, "estimate", "--catalog", bundledCatalog, "--game", "Elden Ring", "--detect")
	assert.ErrorContains(t, err, "no CPU, GPU or memory descriptor found")

	// descriptors given as flags are enough
	_, err = run(t, source, "estimate", "--catalog", bundledCatalog, "--game", "Elden Ring", "--detect", "--gpu", "RTX 3060")
	assert.NoError(t, err)
}

func TestEstimateCommandUnknownGame(t *testing.T) {
	localOnly(t)

	_, err := run(t, fakeSource{}, "estimate", "--catalog", bundledCatalog, "--game", "Half-Life 3")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrGameNotFound)
}

func TestScoreCommand(t *testing.T) {
	localOnly(t)

	out, err := run(t, fakeSource{}, "score",
		"--catalog", bundledCatalog,
		"--game", "Cyberpunk 2077",
		"--cpu", "Intel i7-13700K",
		"--gpu", "RTX 3070",
		"--ram", "32GB")
	require.NoError(t, err)

	var result models.CompatibilityResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	// only the 55 fps baseline misses the 60 fps target
	assert.Equal(t, 85, result.Score)
	assert.False(t, result.IsCompatible)
	require.Len(t, result.Issues, 1)
	assert.Contains(t, result.Issues[0], "Cyberpunk 2077")
}

func TestDetectCommand(t *testing.T) {
	source := fakeSource{host: &models.HostHardware{CPUModel: "AMD Ryzen 7 7800X3D", Cores: 8, Threads: 16, MemoryGB: 32}}

	out, err := run(t, source, "detect")
	require.NoError(t, err)

	var host models.HostHardware
	require.NoError(t, json.Unmarshal([]byte(out), &host))
	assert.Equal(t, "AMD Ryzen 7 7800X3D", host.CPUModel)
	assert.Equal(t, 32, host.MemoryGB)

	_, err = run(t, fakeSource{err: errors.New("no sysfs")}, "detect")
	assert.ErrorContains(t, err, "detect hardware")
}

func TestTokenCommand(t *testing.T) {
	secret := "cli-test-secret-0123456789abcdefghij"
	t.Setenv("API_AUTH_SECRET", secret)

	out, err := run(t, fakeSource{}, "token", "--name", "listing-site", "--expiry", "1h")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	token := lines[len(lines)-1]
	claims, err := services.NewAuthService(secret, time.Hour).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "listing-site", claims.ClientName)

	_, err = run(t, fakeSource{}, "token", "--name", "bad name!")
	assert.ErrorContains(t, err, "invalid client name")
}

func TestBuildDependenciesWithoutCatalog(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &config.Config{
		CacheTTL:       time.Hour,
		CatalogPath:    filepath.Join(t.TempDir(), "missing.json"),
		RateLimitRPS:   5,
		RateLimitBurst: 10,
		RateLimiterTTL: time.Hour,
		StatsInterval:  time.Hour,
		HistorySize:    10,
	}
	deps, err := buildDependencies(ctx, cfg)
	require.NoError(t, err)

	assert.Empty(t, deps.Catalog.Games())
	assert.False(t, deps.Estimator.ProviderConfigured())
	assert.Nil(t, deps.Auth)
	assert.NotNil(t, deps.Hub)

	est, err := deps.Estimator.Estimate(ctx, models.EstimationRequest{
		System:     models.HardwareProfile{GPU: "RTX 3060"},
		Game:       models.GameFpsProfile{Name: "Unlisted"},
		Resolution: "1080p",
		Quality:    "high",
	})
	require.NoError(t, err)
	assert.Equal(t, 66, est.FPS)
	assert.Equal(t, 1, deps.History.Len())
	assert.Equal(t, uint64(1), deps.Estimator.Stats().Estimations[models.SourceLocal])
}

func TestBuildDependenciesMalformedCatalog(t *testing.T) {
	cfg := &config.Config{CatalogPath: "cli_test.go", CacheTTL: time.Hour, RateLimitRPS: 1, HistorySize: 1}

	_, err := buildDependencies(context.Background(), cfg)
	assert.ErrorContains(t, err, "decode catalog")
}
