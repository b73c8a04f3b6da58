package http

import (
	"net/http"

	"moneyflow/internal/core"
)

func (s *Server) handleListStocks(w http.ResponseWriter, r *http.Request) {
	hs, err := s.deps.Portfolio.List(r.Context())
	if err != nil {
		writeError(w, r, err, "Stock")
		return
	}
	NewJSONResponse().Body(hs).Write(w)
}

func (s *Server) handleCreateStock(w http.ResponseWriter, r *http.Request) {
	var in core.StockInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, "Stock")
		return
	}
	h, err := s.deps.Portfolio.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "Stock")
		return
	}
	NewJSONResponse().Body(h).Write(w)
}

func (s *Server) handleDeleteStock(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Portfolio.Delete(r.Context(), pathID(r, "id")); err != nil {
		writeError(w, r, err, "Stock")
		return
	}
	NewJSONResponse().Message("Stock deleted").Write(w)
}

func (s *Server) handleGroupedStocks(w http.ResponseWriter, r *http.Request) {
	positions, err := s.deps.Portfolio.Grouped(r.Context())
	if err != nil {
		writeError(w, r, err, "Stock")
		return
	}
	NewJSONResponse().Body(positions).Write(w)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	assetType, err := ParseAssetType(r.URL.Query())
	if err != nil {
		writeError(w, r, err, "Quote")
		return
	}
	q, err := s.deps.Portfolio.Quote(r.Context(), pathID(r, "symbol"), assetType)
	if err != nil {
		writeError(w, r, err, "Quote")
		return
	}
	NewJSONResponse().Body(q).Write(w)
}
