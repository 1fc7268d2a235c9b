package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/lectern/internal/models"
)

func TestGetSettings_ReturnsSeededDefaults(t *testing.T) {
	router, repos := setupTestRouter(t)
	require.NoError(t, repos.Settings.EnsureDefaults(context.Background()))

	w := getJSON(router, "/api/settings")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Len(t, resp, 6)
	assert.Equal(t, "2.0", resp[models.SettingMaxPlaybackSpeed])
	assert.Equal(t, "dark", resp[models.SettingTheme])
}

func TestGetSettings_EmptyTable(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := getJSON(router, "/api/settings")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{}", w.Body.String())
}

func TestUpdateSettings_StringifiesMixedTypes(t *testing.T) {
	router, repos := setupTestRouter(t)
	require.NoError(t, repos.Settings.EnsureDefaults(context.Background()))

	// Booleans and numbers are accepted and stored as strings.
	w := postJSON(router, "/api/settings", `{
		"theme": "light",
		"auto_resume": false,
		"current_playback_speed": 1.75
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "success", status.Status)

	settings, err := repos.Settings.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "light", settings[models.SettingTheme])
	assert.Equal(t, "false", settings[models.SettingAutoResume])
	assert.Equal(t, "1.75", settings[models.SettingCurrentPlaybackSpeed])
	// Keys not in the payload are untouched.
	assert.Equal(t, "2.0", settings[models.SettingMaxPlaybackSpeed])
}

func TestUpdateSettings_InvalidBody(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := postJSON(router, "/api/settings", `[1, 2, 3]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingString(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "dark", "dark"},
		{"bool", true, "true"},
		{"integer number", float64(2), "2"},
		{"fractional number", 1.75, "1.75"},
		{"nil", nil, "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, settingString(tt.value))
		})
	}
}
