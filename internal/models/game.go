package models

import "strings"

// Supported resolutions
const (
	Resolution1080p = "1080p"
	Resolution1440p = "1440p"
	Resolution4K    = "4k"
)

// Quality presets. Ultra has no stored baseline and aliases to high.
const (
	QualityLow    = "low"
	QualityMedium = "medium"
	QualityHigh   = "high"
	QualityUltra  = "ultra"
)

// Resolutions lists every resolution a complete fps profile must carry
var Resolutions = []string{Resolution1080p, Resolution1440p, Resolution4K}

// FpsTiers holds baseline fps per stored quality tier
type FpsTiers struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// Tier returns the baseline for a quality preset, mapping ultra to high
func (t FpsTiers) Tier(quality string) (int, bool) {
	switch BaselineQuality(quality) {
	case QualityLow:
		return t.Low, true
	case QualityMedium:
		return t.Medium, true
	case QualityHigh:
		return t.High, true
	default:
		return 0, false
	}
}

// Complete reports whether all three tiers carry a positive baseline
func (t FpsTiers) Complete() bool {
	return t.Low > 0 && t.Medium > 0 && t.High > 0
}

// GameFpsProfile is the baseline fps of a game on a reference mid-tier build
type GameFpsProfile struct {
	Name        string              `json:"name"`
	FpsProfiles map[string]FpsTiers `json:"fpsProfiles,omitempty"`
}

// Baseline looks up the stored baseline for a resolution and quality preset
func (g GameFpsProfile) Baseline(resolution, quality string) (int, bool) {
	tiers, ok := g.FpsProfiles[strings.ToLower(strings.TrimSpace(resolution))]
	if !ok {
		return 0, false
	}
	return tiers.Tier(quality)
}

// GameRequirement is what the compatibility scorer checks a profile against
type GameRequirement struct {
	Name           string `json:"name"`
	MinRAM         int    `json:"minRam"`
	RecommendedRAM int    `json:"recommendedRam"`
	MinCPU         string `json:"minCpu"`
	RecommendedCPU string `json:"recommendedCpu"`
	MinGPU         string `json:"minGpu"`
	RecommendedGPU string `json:"recommendedGpu"`
	Fps1080pLow    int    `json:"fps1080pLow"`
	Fps1080pMedium int    `json:"fps1080pMedium"`
	Fps1080pHigh   int    `json:"fps1080pHigh"`
	Fps1440pLow    int    `json:"fps1440pLow"`
	Fps1440pMedium int    `json:"fps1440pMedium"`
	Fps1440pHigh   int    `json:"fps1440pHigh"`
	Fps4kLow       int    `json:"fps4kLow"`
	Fps4kMedium    int    `json:"fps4kMedium"`
	Fps4kHigh      int    `json:"fps4kHigh"`
}

// ExpectedFps returns the game's own baseline for a resolution and quality
func (r GameRequirement) ExpectedFps(resolution, quality string) (int, bool) {
	var tiers FpsTiers
	switch strings.ToLower(strings.TrimSpace(resolution)) {
	case Resolution1080p:
		tiers = FpsTiers{Low: r.Fps1080pLow, Medium: r.Fps1080pMedium, High: r.Fps1080pHigh}
	case Resolution1440p:
		tiers = FpsTiers{Low: r.Fps1440pLow, Medium: r.Fps1440pMedium, High: r.Fps1440pHigh}
	case Resolution4K:
		tiers = FpsTiers{Low: r.Fps4kLow, Medium: r.Fps4kMedium, High: r.Fps4kHigh}
	default:
		return 0, false
	}
	return tiers.Tier(quality)
}

// CatalogGame is one entry of the game catalog
type CatalogGame struct {
	GameRequirement
	FpsProfiles map[string]FpsTiers `json:"fpsProfiles"`
}

// FpsProfile projects the catalog entry onto the estimator's view
func (g CatalogGame) FpsProfile() GameFpsProfile {
	return GameFpsProfile{Name: g.Name, FpsProfiles: g.FpsProfiles}
}

// Requirement projects the catalog entry onto the scorer's view. The
// per-resolution fps fields are filled from fpsProfiles when left at zero.
func (g CatalogGame) Requirement() GameRequirement {
	req := g.GameRequirement
	fill := func(dst *int, resolution string, pick func(FpsTiers) int) {
		if *dst == 0 {
			*dst = pick(g.FpsProfiles[resolution])
		}
	}
	low := func(t FpsTiers) int { return t.Low }
	medium := func(t FpsTiers) int { return t.Medium }
	high := func(t FpsTiers) int { return t.High }

	fill(&req.Fps1080pLow, Resolution1080p, low)
	fill(&req.Fps1080pMedium, Resolution1080p, medium)
	fill(&req.Fps1080pHigh, Resolution1080p, high)
	fill(&req.Fps1440pLow, Resolution1440p, low)
	fill(&req.Fps1440pMedium, Resolution1440p, medium)
	fill(&req.Fps1440pHigh, Resolution1440p, high)
	fill(&req.Fps4kLow, Resolution4K, low)
	fill(&req.Fps4kMedium, Resolution4K, medium)
	fill(&req.Fps4kHigh, Resolution4K, high)
	return req
}

// BaselineQuality maps a requested preset onto the stored tier keys
func BaselineQuality(quality string) string {
	q := strings.ToLower(strings.TrimSpace(quality))
	if q == QualityUltra {
		return QualityHigh
	}
	return q
}
