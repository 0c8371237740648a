package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"framecheck/internal/models"
)

// Scoring constants
const (
	CompatibleScoreThreshold = 70
	DefaultTargetFPS         = 60

	ramPenalty = 30
	cpuPenalty = 20
	gpuPenalty = 25
	fpsPenalty = 15
)

// Issue texts. Recommendations are derived by scanning issues for the
// RAM, CPU and GPU markers.
const (
	issueRAM = "insufficient RAM"
	issueCPU = "CPU may not meet requirements"
	issueGPU = "GPU may not meet requirements"
	issueFPS = "expected fps below target"
)

var recommendationRules = []struct {
	marker string
	advice string
}{
	{"RAM", "Upgrade system memory to at least the recommended RAM for these games"},
	{"CPU", "Consider a newer-generation CPU"},
	{"GPU", "Consider upgrading the graphics card"},
}

// cpuPattern extracts a comparable generation from one CPU naming family
type cpuPattern struct {
	family     string
	re         *regexp.Regexp
	generation func(match []string) (int, bool)
}

// cpuPatterns are tried in order; the first match decides the family
var cpuPatterns = []cpuPattern{
	// i7-13700K -> 13, i5-9600K -> 9
	{family: "intel", re: regexp.MustCompile(`i[3579]-(\d{4,5})`), generation: intelGeneration},
	// Ryzen 5 5600X -> 5
	{family: "amd", re: regexp.MustCompile(`ryzen\s*(\d)`), generation: firstGroup},
}

func intelGeneration(match []string) (int, bool) {
	model := match[1]
	return atoiOK(model[:len(model)-3])
}

func firstGroup(match []string) (int, bool) {
	return atoiOK(match[1])
}

func atoiOK(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

type cpuGeneration struct {
	family     string
	generation int
}

func extractCPUGeneration(descriptor string) (cpuGeneration, bool) {
	descriptor = strings.ToLower(descriptor)
	for _, p := range cpuPatterns {
		m := p.re.FindStringSubmatch(descriptor)
		if m == nil {
			continue
		}
		if gen, ok := p.generation(m); ok {
			return cpuGeneration{family: p.family, generation: gen}, true
		}
	}
	return cpuGeneration{}, false
}

// CPUMeetsRequirement compares generations when both descriptors belong to
// the same naming family. Anything it cannot compare passes.
func CPUMeetsRequirement(system, required string) bool {
	sys, sysOK := extractCPUGeneration(system)
	req, reqOK := extractCPUGeneration(required)
	if !sysOK || !reqOK || sys.family != req.family {
		return true
	}
	return sys.generation >= req.generation
}

var gpuModelPattern = regexp.MustCompile(`(gtx|rtx|rx)\s*-?(\d{3,4})`)

type gpuModel struct {
	brand  string
	number int
}

func extractGPUModel(descriptor string) (gpuModel, bool) {
	m := gpuModelPattern.FindStringSubmatch(strings.ToLower(descriptor))
	if m == nil {
		return gpuModel{}, false
	}
	n, ok := atoiOK(m[2])
	if !ok {
		return gpuModel{}, false
	}
	return gpuModel{brand: m[1], number: n}, true
}

// gpuRules are evaluated in order; the first rule that applies decides
var gpuRules = []struct {
	applies    func(sys, req gpuModel) bool
	compatible func(sys, req gpuModel) bool
}{
	{
		applies:    func(sys, req gpuModel) bool { return sys.brand == "rtx" && req.brand == "gtx" },
		compatible: func(sys, req gpuModel) bool { return true },
	},
	{
		applies:    func(sys, req gpuModel) bool { return sys.brand == "gtx" && req.brand == "rtx" },
		compatible: func(sys, req gpuModel) bool { return false },
	},
	{
		applies:    func(sys, req gpuModel) bool { return true },
		compatible: func(sys, req gpuModel) bool { return sys.number >= req.number },
	},
}

// GPUMeetsRequirement applies the brand rules, then compares model numbers.
// Descriptors without a recognizable brand and number pass.
func GPUMeetsRequirement(system, required string) bool {
	sys, sysOK := extractGPUModel(system)
	req, reqOK := extractGPUModel(required)
	if !sysOK || !reqOK {
		return true
	}
	for _, rule := range gpuRules {
		if rule.applies(sys, req) {
			return rule.compatible(sys, req)
		}
	}
	return true
}

var (
	ramWithUnit    = regexp.MustCompile(`(\d+)\s*gb`)
	leadingNumeric = regexp.MustCompile(`^\D*?(\d+)`)
)

// ParseRAMGB reads the memory size in GB from a descriptor such as
// "16GB DDR4" or "32 GB". A number followed by GB wins over the first
// number so "DDR5 32GB" reads 32.
func ParseRAMGB(descriptor string) (int, bool) {
	d := strings.ToLower(descriptor)
	if m := ramWithUnit.FindStringSubmatch(d); m != nil {
		return atoiOK(m[1])
	}
	if m := leadingNumeric.FindStringSubmatch(d); m != nil {
		return atoiOK(m[1])
	}
	return 0, false
}

// CompatibilityScorer scores hardware profiles against game requirements
type CompatibilityScorer struct {
	telemetry *Telemetry
}

// NewCompatibilityScorer creates a scorer; telemetry may be nil
func NewCompatibilityScorer(telemetry *Telemetry) *CompatibilityScorer {
	return &CompatibilityScorer{telemetry: telemetry}
}

// Score checks hw against every game and averages the per-game scores. The
// profile is compatible only when the average reaches 70 and no issue was
// raised at all. A non-positive targetFps means DefaultTargetFPS.
func (s *CompatibilityScorer) Score(hw models.HardwareProfile, games []models.GameRequirement, resolution, quality string, targetFps int) models.CompatibilityResult {
	if targetFps <= 0 {
		targetFps = DefaultTargetFPS
	}

	issues := []string{}
	total := 0
	for _, game := range games {
		score, gameIssues := scoreGame(hw, game, resolution, quality, targetFps)
		total += score
		issues = append(issues, gameIssues...)
	}

	average := 0
	if len(games) > 0 {
		average = int(math.Round(float64(total) / float64(len(games))))
	}

	result := models.CompatibilityResult{
		IsCompatible:    average >= CompatibleScoreThreshold && len(issues) == 0,
		Score:           average,
		Issues:          issues,
		Recommendations: recommendationsFor(issues),
	}
	s.telemetry.compatibilityVerdict(result.IsCompatible)
	return result
}

func scoreGame(hw models.HardwareProfile, game models.GameRequirement, resolution, quality string, targetFps int) (int, []string) {
	score := 100
	var issues []string
	low := strings.EqualFold(strings.TrimSpace(quality), models.QualityLow)

	requiredRAM, requiredCPU, requiredGPU := game.RecommendedRAM, game.RecommendedCPU, game.RecommendedGPU
	if low {
		requiredRAM, requiredCPU, requiredGPU = game.MinRAM, game.MinCPU, game.MinGPU
	}

	if systemRAM, ok := ParseRAMGB(hw.RAM); ok && systemRAM < requiredRAM {
		issues = append(issues, fmt.Sprintf("%s: %s (%dGB available, %dGB required)", game.Name, issueRAM, systemRAM, requiredRAM))
		score -= ramPenalty
	}

	if !CPUMeetsRequirement(hw.CPU, requiredCPU) {
		issues = append(issues, fmt.Sprintf("%s: %s (%s required)", game.Name, issueCPU, requiredCPU))
		score -= cpuPenalty
	}

	if !GPUMeetsRequirement(hw.GPU, requiredGPU) {
		issues = append(issues, fmt.Sprintf("%s: %s (%s required)", game.Name, issueGPU, requiredGPU))
		score -= gpuPenalty
	}

	// a zero baseline means the game carries no fps data for this tier
	if expected, ok := game.ExpectedFps(resolution, quality); ok && expected > 0 && expected < targetFps {
		issues = append(issues, fmt.Sprintf("%s: %s (%d < %d)", game.Name, issueFPS, expected, targetFps))
		score -= fpsPenalty
	}

	return max(score, 0), issues
}

// recommendationsFor emits one fixed suggestion per hardware category
// mentioned by any issue
func recommendationsFor(issues []string) []string {
	recommendations := []string{}
	for _, rule := range recommendationRules {
		if lo.ContainsBy(issues, func(issue string) bool { return strings.Contains(issue, rule.marker) }) {
			recommendations = append(recommendations, rule.advice)
		}
	}
	return recommendations
}
