package handlers

import (
	"net/http"
	"time"

	"studybuddy/backend/middleware"
	"studybuddy/backend/services"
)

// GetMentorDashboard handles GET /api/dashboard
func GetMentorDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := services.BuildMentorDashboard(r.Context(), middleware.GetUserIDFromContext(r), time.Now().UTC())
	if err != nil {
		writeServiceError(w, "to build dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
