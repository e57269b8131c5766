package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineAction(t *testing.T) {
	assert.Equal(t, "create_session", determineAction("POST", "/api/sessions"))
	assert.Equal(t, "send_message", determineAction("POST", "/api/sessions/session-1/messages"))
	assert.Equal(t, "view_session", determineAction("GET", "/api/sessions/session-1"))
	assert.Equal(t, "list_tools", determineAction("GET", "/api/tools"))
	assert.Equal(t, "metrics", determineAction("GET", "/metrics"))
	assert.Equal(t, "unknown", determineAction("GET", "/nope"))
}

func TestExtractSessionID(t *testing.T) {
	assert.Equal(t, "session-1", extractSessionID("/api/sessions/session-1/messages"))
	assert.Equal(t, "session-1", extractSessionID("/api/sessions/session-1"))
	assert.Equal(t, "", extractSessionID("/api/sessions"))
	assert.Equal(t, "", extractSessionID("/api/tools"))
}
