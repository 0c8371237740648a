package models

import "time"

// EstimationRecord is one estimation outcome kept in the history window
type EstimationRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	Game       string    `json:"game"`
	Resolution string    `json:"resolution"`
	Quality    string    `json:"quality"`
	GPU        string    `json:"gpu,omitempty"`
	FPS        int       `json:"fps"`
	BaseFPS    int       `json:"base_fps"`
	Source     Source    `json:"source"`
}

// EngineStats is a point-in-time snapshot of the estimation engine
type EngineStats struct {
	CacheEntries       int               `json:"cache_entries"`
	CacheHits          uint64            `json:"cache_hits"`
	CacheMisses        uint64            `json:"cache_misses"`
	CacheStale         uint64            `json:"cache_stale"`
	Estimations        map[Source]uint64 `json:"estimations"`
	ProviderErrors     uint64            `json:"provider_errors"`
	ProviderConfigured bool              `json:"provider_configured"`
	Timestamp          time.Time         `json:"timestamp"`
}
