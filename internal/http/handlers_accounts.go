package http

import (
	"net/http"

	"moneyflow/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.deps.Accounts.List(r.Context())
	if err != nil {
		writeError(w, r, err, "Account")
		return
	}
	NewJSONResponse().Body(accounts).Write(w)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in core.AccountInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, "Account")
		return
	}
	a, err := s.deps.Accounts.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "Account")
		return
	}
	NewJSONResponse().Body(a).Write(w)
}

// handleUpdateAccount changes account metadata; the balance is owned by
// the reconciler and any balance in the body is ignored.
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var in core.AccountInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, "Account")
		return
	}
	if _, err := s.deps.Accounts.Update(r.Context(), pathID(r, "id"), in); err != nil {
		writeError(w, r, err, "Account")
		return
	}
	NewJSONResponse().Message("Account updated").Write(w)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Accounts.Delete(r.Context(), pathID(r, "id")); err != nil {
		writeError(w, r, err, "Account")
		return
	}
	NewJSONResponse().Message("Account deleted").Write(w)
}

func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	month := ParseMonth(r.URL.Query())
	inv, err := s.deps.Invoices.Project(r.Context(), pathID(r, "id"), month)
	if err != nil {
		writeError(w, r, err, "Credit card account")
		return
	}
	NewJSONResponse().Body(inv).Write(w)
}
