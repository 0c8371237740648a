package models

// CompatibilityRequest is the body of a compatibility scoring call. Games
// can be embedded or referenced by catalog name.
type CompatibilityRequest struct {
	System     HardwareProfile   `json:"system"`
	Games      []GameRequirement `json:"games,omitempty"`
	GameNames  []string          `json:"gameNames,omitempty"`
	Resolution string            `json:"resolution"`
	Quality    string            `json:"quality"`
	TargetFPS  int               `json:"targetFps,omitempty"`
}

// CompatibilityResult is the verdict for a hardware profile over a game list
type CompatibilityResult struct {
	IsCompatible    bool     `json:"isCompatible"`
	Score           int      `json:"score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}
