package http

import (
	"net/http"

	"moneyflow/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Categories.List(r.Context())
	if err != nil {
		writeError(w, r, err, "Category")
		return
	}
	NewJSONResponse().Body(cats).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in core.CategoryInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, "Category")
		return
	}
	c, err := s.deps.Categories.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "Category")
		return
	}
	NewJSONResponse().Body(c).Write(w)
}

func (s *Server) handleSeedCategories(w http.ResponseWriter, r *http.Request) {
	seeded, count, err := s.deps.Categories.Seed(r.Context())
	if err != nil {
		writeError(w, r, err, "Category")
		return
	}
	msg := "Categories already exist"
	if seeded {
		msg = "Categories seeded successfully"
	}
	NewJSONResponse().Body(map[string]any{"message": msg, "count": count}).Write(w)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Settings.Get(r.Context())
	if err != nil {
		writeError(w, r, err, "Settings")
		return
	}
	NewJSONResponse().Body(st).Write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in core.SettingsInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, "Settings")
		return
	}
	st, err := s.deps.Settings.Update(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "Settings")
		return
	}
	NewJSONResponse().Body(st).Write(w)
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	month := ParseMonth(r.URL.Query())
	sum, err := s.deps.Dashboard.Summary(r.Context(), month)
	if err != nil {
		writeError(w, r, err, "Summary")
		return
	}
	NewJSONResponse().Body(sum).Write(w)
}
