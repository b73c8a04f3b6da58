package http

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"moneyflow/internal/core"
)

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Items []core.ExtractedItem `json:"items"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Extraction")
		return
	}

	var (
		cats     []core.Category
		accounts []core.Account
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		cats, err = s.deps.Categories.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		accounts, err = s.deps.Accounts.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, r, err, "Extraction")
		return
	}

	items, err := s.deps.Extractor.Extract(r.Context(), sanitizeInput(req.Text), cats, accounts)
	if err != nil {
		writeError(w, r, err, "Extraction")
		return
	}
	NewJSONResponse().Body(extractResponse{Items: items}).Write(w)
}
