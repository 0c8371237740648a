package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"framecheck/internal/models"
)

const GB = 1024 * 1024 * 1024

// HardwareSource describes the machine the service runs on
type HardwareSource interface {
	Detect(ctx context.Context) (*models.HostHardware, error)
}

// HostDetector reads CPU, memory and host details through gopsutil and the
// graphics cards through ghw
type HostDetector struct{}

// NewHostDetector creates a detector for the local machine
func NewHostDetector() *HostDetector {
	return &HostDetector{}
}

// Detect probes the local machine. CPU and memory are required; GPU and
// host details are best effort since they are often missing in containers.
func (d *HostDetector) Detect(ctx context.Context) (*models.HostHardware, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("read cpu info: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("read cpu info: no processors reported")
	}

	cores, err := cpu.CountsWithContext(ctx, false)
	if err != nil {
		log.Printf("Warning: Could not get physical core count: %v", err)
	}
	threads, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		log.Printf("Warning: Could not get logical core count: %v", err)
	}

	virtualMemory, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("read memory info: %w", err)
	}

	hw := &models.HostHardware{
		CPUModel: strings.TrimSpace(infos[0].ModelName),
		Cores:    cores,
		Threads:  threads,
		MemoryGB: int(math.Round(float64(virtualMemory.Total) / GB)),
		GPUs:     detectGPUs(),
	}

	if info, err := host.InfoWithContext(ctx); err != nil {
		log.Printf("Warning: Could not get host info: %v", err)
	} else {
		hw.Hostname = info.Hostname
		hw.OS = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
	}

	hw.Profile = profileFromHost(hw)
	return hw, nil
}

func detectGPUs() []string {
	gpus := []string{}
	info, err := ghw.GPU()
	if err != nil {
		log.Printf("Warning: Could not get GPU info: %v", err)
		return gpus
	}
	for _, card := range info.GraphicsCards {
		if card == nil || card.DeviceInfo == nil {
			continue
		}
		var name string
		if card.DeviceInfo.Vendor != nil {
			name = card.DeviceInfo.Vendor.Name
		}
		if card.DeviceInfo.Product != nil {
			name = strings.TrimSpace(name + " " + card.DeviceInfo.Product.Name)
		}
		if name != "" {
			gpus = append(gpus, name)
		}
	}
	return gpus
}

// profileFromHost turns detected hardware into the descriptors the
// estimator matches on. A GPU with a recognizable model number is preferred
// over integrated graphics listed before it.
func profileFromHost(hw *models.HostHardware) models.HardwareProfile {
	profile := models.HardwareProfile{CPU: hw.CPUModel}

	for _, gpu := range hw.GPUs {
		if _, ok := extractGPUModel(gpu); ok {
			profile.GPU = gpu
			break
		}
	}
	if profile.GPU == "" && len(hw.GPUs) > 0 {
		profile.GPU = hw.GPUs[0]
	}

	if hw.MemoryGB > 0 {
		profile.RAM = fmt.Sprintf("%dGB", hw.MemoryGB)
	}
	return profile
}
