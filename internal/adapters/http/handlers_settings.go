package web

import (
	"net/http"

	"mydaylog/internal/application/orchestrators"
	"mydaylog/internal/domain/usersettings"
)

func settingsDeps() orchestrators.SettingsDeps {
	return orchestrators.SettingsDeps{SettingsStore: stores.SettingsStore, Now: opts.Now}
}

// handleGetSettings handles GET /user-settings
func handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := orchestrators.ExecuteGetUserSettings(r.Context(), session(r).AccountID, settingsDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleUpdateSettings handles PATCH /user-settings
func handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var p usersettings.Patch
	if !strictDecode(w, r, &p) {
		return
	}
	s, err := orchestrators.ExecuteUpdateUserSettings(r.Context(), orchestrators.UpdateUserSettingsInput{
		UserID: session(r).AccountID,
		Patch:  p,
	}, settingsDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
