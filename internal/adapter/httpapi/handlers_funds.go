package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/navtrail/navtrail-backend/internal/domain"
)

func (s *Server) handleListFunds(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := s.funds.List(r.Context(), query.Get("search"), page, limit)
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	if len(query) == 0 {
		respondMessage(w, http.StatusOK,
			"Tip: use the search, page and limit query parameters to refine results", result)
		return
	}
	respondData(w, http.StatusOK, result)
}

func (s *Server) handleFundNAV(w http.ResponseWriter, r *http.Request) {
	schemeCode, err := strconv.Atoi(r.URL.Query().Get("schemeCode"))
	if err != nil {
		respondError(w, s.log, fmt.Errorf("%w: scheme code must be a number", domain.ErrInvalidInput))
		return
	}

	report, err := s.funds.History(r.Context(), schemeCode)
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	respondData(w, http.StatusOK, report)
}
