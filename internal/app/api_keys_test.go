package app

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"nyctransit.dev/board/internal/appconf"
)

func TestBlankKeyIsInvalid(t *testing.T) {
	app := &Application{
		Config: appconf.Config{
			ApiKeys: []string{"key"},
		},
	}
	assert.True(t, app.IsInvalidAPIKey(""))
}

func TestConfiguredKeyIsValid(t *testing.T) {
	app := &Application{
		Config: appconf.Config{
			ApiKeys: []string{"one", "two"},
		},
	}
	assert.False(t, app.IsInvalidAPIKey("two"))
	assert.True(t, app.IsInvalidAPIKey("three"))

	assert.False(t, app.RequestHasInvalidAPIKey(httptest.NewRequest("GET", "/api/board.json?key=one", nil)))
	assert.True(t, app.RequestHasInvalidAPIKey(httptest.NewRequest("GET", "/api/board.json", nil)))
}
