package http

import (
	"net/http"

	"moneyflow/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := ParseTransactionFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err, "Transaction")
		return
	}
	txs, err := s.deps.Transactions.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err, "Transaction")
		return
	}
	NewJSONResponse().Body(txs).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, "Transaction")
		return
	}
	t, err := s.deps.Transactions.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "Transaction")
		return
	}
	NewJSONResponse().Body(t).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	var in core.TransactionInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, "Transaction")
		return
	}
	if _, err := s.deps.Transactions.Update(r.Context(), id, in); err != nil {
		writeError(w, r, err, "Transaction")
		return
	}
	NewJSONResponse().Message("Transaction updated", "id", id).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Transactions.Delete(r.Context(), pathID(r, "id")); err != nil {
		writeError(w, r, err, "Transaction")
		return
	}
	NewJSONResponse().Message("Transaction deleted").Write(w)
}
