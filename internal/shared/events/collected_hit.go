package events

// CollectedHit is a hit payload accepted by the collector, with the request
// metadata attached. Published by the collector, consumed by the hits service.
type CollectedHit struct {
	// Params holds the decoded Measurement Protocol parameters, blank values kept.
	Params        map[string]string `json:"params"`
	ServerTimeUTC int64             `json:"serverTimeUtc"`
	IPAddress     string            `json:"ipAddress,omitempty"`
	UserAgent     string            `json:"userAgent,omitempty"`
	Country       string            `json:"country,omitempty"`
	Region        string            `json:"region,omitempty"`
	City          string            `json:"city,omitempty"`
}

// Param returns the named parameter, or "" when absent.
func (h CollectedHit) Param(key string) string {
	return h.Params[key]
}
