package models

// EstimationRequest is the body of an fps estimation call
type EstimationRequest struct {
	System     HardwareProfile `json:"system"`
	Game       GameFpsProfile  `json:"game"`
	Resolution string          `json:"resolution"`
	Quality    string          `json:"quality"`
}

// Source tells where an estimate came from
type Source string

const (
	SourceCache    Source = "cached"
	SourceLocal    Source = "estimated" // no provider configured
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback" // provider failed softly
)

// Estimation is the outcome of a successful estimation
type Estimation struct {
	FPS     int
	Source  Source
	BaseFPS int
}

// EstimationResponse is the wire shape of a successful estimation. Exactly
// one tag is set, or none when the provider answered.
type EstimationResponse struct {
	FPS       int  `json:"fps"`
	Cached    bool `json:"cached,omitempty"`
	Estimated bool `json:"estimated,omitempty"`
	Fallback  bool `json:"fallback,omitempty"`
}

// Response converts an estimation to its wire shape
func (e Estimation) Response() EstimationResponse {
	resp := EstimationResponse{FPS: e.FPS}
	switch e.Source {
	case SourceCache:
		resp.Cached = true
	case SourceLocal:
		resp.Estimated = true
	case SourceFallback:
		resp.Fallback = true
	}
	return resp
}

// ErrorResponse is the wire shape of every failed call
type ErrorResponse struct {
	Error          string `json:"error"`
	ProviderStatus int    `json:"providerStatus,omitempty"`
	Detail         string `json:"detail,omitempty"`
}
