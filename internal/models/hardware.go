package models

import "strings"

// HardwareProfile is the free-text hardware description of a listing or a
// local machine. Every field is optional and matched case-insensitively.
type HardwareProfile struct {
	CPU string `json:"cpu,omitempty"`
	GPU string `json:"gpu,omitempty"`
	RAM string `json:"ram,omitempty"`
}

// IsEmpty reports whether no descriptor is set
func (h HardwareProfile) IsEmpty() bool {
	return strings.TrimSpace(h.CPU) == "" && strings.TrimSpace(h.GPU) == "" && strings.TrimSpace(h.RAM) == ""
}

// HostHardware is what hardware detection found on the local machine
type HostHardware struct {
	CPUModel string          `json:"cpu_model"`
	Cores    int             `json:"cores"`
	Threads  int             `json:"threads"`
	MemoryGB int             `json:"memory_gb"`
	GPUs     []string        `json:"gpus"`
	Hostname string          `json:"hostname,omitempty"`
	OS       string          `json:"os,omitempty"`
	Profile  HardwareProfile `json:"profile"`
}
