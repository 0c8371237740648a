package services

import (
	"math"
	"strings"

	"framecheck/internal/models"
)

// Bounds of a local estimate
const (
	MinLocalFPS     = 15
	MaxBaselineGain = 2
)

// tierRule matches a descriptor containing any of its needles
type tierRule struct {
	needles    []string
	multiplier float64
}

func (r tierRule) matches(descriptor string) bool {
	for _, needle := range r.needles {
		if strings.Contains(descriptor, needle) {
			return true
		}
	}
	return false
}

// gpuTierRules are evaluated in order; the first match wins
var gpuTierRules = []tierRule{
	{needles: []string{"4090", "4080"}, multiplier: 1.8},
	{needles: []string{"4070", "3090", "3080"}, multiplier: 1.5},
	{needles: []string{"4060", "3070", "7900"}, multiplier: 1.3},
	{needles: []string{"3060", "7800", "6800"}, multiplier: 1.1},
	{needles: []string{"3050", "6700", "7600"}, multiplier: 0.9},
	{needles: []string{"1660", "1650", "6600"}, multiplier: 0.7},
	{needles: []string{"1050", "1030"}, multiplier: 0.4},
}

// cpuTierRules compound on top of the GPU multiplier, first match wins
var cpuTierRules = []tierRule{
	{needles: []string{"i9", "9900", "7950", "7900"}, multiplier: 1.1},
	{needles: []string{"i3", "3100", "5600"}, multiplier: 0.95},
}

// firstMatch returns the multiplier of the first matching rule, or 1.0
func firstMatch(rules []tierRule, descriptor string) float64 {
	descriptor = strings.ToLower(descriptor)
	for _, rule := range rules {
		if rule.matches(descriptor) {
			return rule.multiplier
		}
	}
	return 1.0
}

// GPUMultiplier returns the tier multiplier of a GPU descriptor
func GPUMultiplier(gpu string) float64 {
	return firstMatch(gpuTierRules, gpu)
}

// CPUMultiplier returns the adjustment of a CPU descriptor
func CPUMultiplier(cpu string) float64 {
	return firstMatch(cpuTierRules, cpu)
}

// EstimateLocal scales baseFps by the hardware tier multipliers and clamps
// the result to [15, 2*baseFps]. When 2*baseFps is below 15 the upper bound
// wins.
func EstimateLocal(hw models.HardwareProfile, baseFps int) int {
	multiplier := GPUMultiplier(hw.GPU) * CPUMultiplier(hw.CPU)
	return clampRound(float64(baseFps)*multiplier, MinLocalFPS, float64(baseFps*MaxBaselineGain))
}

func clampRound(v, lo, hi float64) int {
	return int(math.Round(math.Min(math.Max(v, lo), hi)))
}
