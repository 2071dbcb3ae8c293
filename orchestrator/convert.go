package orchestrator

import (
	"github.com/hrygo/chatrelay/aiclient"
	"github.com/hrygo/chatrelay/store"
)

// aiclientConfig narrows a resolved store.CoreAI down to the fields the
// AI Client needs (aiclient deliberately has no persistence dependency).
func aiclientConfig(ai *store.CoreAI) aiclient.Config {
	return aiclient.Config{
		APIEndpoint:    ai.APIEndpoint,
		AuthRequired:   ai.AuthRequired,
		AuthToken:      ai.AuthToken,
		TimeoutSeconds: ai.TimeoutSeconds,
	}
}
