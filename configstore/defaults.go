package configstore

import "github.com/hrygo/chatrelay/store"

// Hard-coded defaults substituted when a reference is missing or inactive
// (spec §4.1): the core never errors on a config lookup.
const (
	defaultAPIEndpoint = "http://localhost:8000"
	defaultBaseURL     = "http://localhost:8000"
	defaultTimeout     = 30
	defaultRateLimit   = 60
)

// DefaultCoreAI is returned by GetCoreAI when the id is empty, unknown, or
// references an inactive record.
var DefaultCoreAI = &store.CoreAI{
	Name:           "default",
	APIEndpoint:    defaultAPIEndpoint,
	TimeoutSeconds: defaultTimeout,
	IsActive:       true,
}

// DefaultPlatform is returned by GetPlatform under the same conditions.
var DefaultPlatform = &store.Platform{
	Name:               "default",
	BaseURL:            defaultBaseURL,
	RateLimitPerMinute: defaultRateLimit,
	IsActive:           true,
}

// DefaultBot is returned by GetBot when no Bot can be resolved for a
// conversation; it has no CoreAI/Platform reference of its own, so callers
// resolve those through GetCoreAI("")/GetPlatform("") to reach the same
// fallback defaults.
var DefaultBot = &store.Bot{
	Name:     "default",
	Language: "vi",
	IsActive: true,
}
