package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"framecheck/internal/models"
)

func TestProfileFromHost(t *testing.T) {
	tests := []struct {
		name string
		host models.HostHardware
		want models.HardwareProfile
	}{
		{
			name: "discrete card preferred over integrated",
			host: models.HostHardware{
				CPUModel: "13th Gen Intel(R) Core(TM) i7-13700K",
				MemoryGB: 32,
				GPUs:     []string{"Intel Corporation Raptor Lake-S GT1", "NVIDIA Corporation GA106 [GeForce RTX 3060]"},
			},
			want: models.HardwareProfile{
				CPU: "13th Gen Intel(R) Core(TM) i7-13700K",
				GPU: "NVIDIA Corporation GA106 [GeForce RTX 3060]",
				RAM: "32GB",
			},
		},
		{
			name: "first card when none is recognized",
			host: models.HostHardware{
				CPUModel: "Apple M2",
				MemoryGB: 16,
				GPUs:     []string{"Apple M2 GPU", "Other"},
			},
			want: models.HardwareProfile{CPU: "Apple M2", GPU: "Apple M2 GPU", RAM: "16GB"},
		},
		{
			name: "no gpu and no memory",
			host: models.HostHardware{CPUModel: "AMD Ryzen 5 5600X"},
			want: models.HardwareProfile{CPU: "AMD Ryzen 5 5600X"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, profileFromHost(&tt.host))
		})
	}
}

func TestDetectedProfileFeedsEstimator(t *testing.T) {
	hw := &models.HostHardware{
		CPUModel: "AMD Ryzen 5 5600X",
		MemoryGB: 16,
		GPUs:     []string{"NVIDIA Corporation GA106 [GeForce RTX 3060]"},
	}

	// 3060 is x1.1 and the 5600 CPU is x0.95
	assert.Equal(t, 63, EstimateLocal(profileFromHost(hw), 60))
}
