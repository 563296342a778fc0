package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/navtrail/navtrail-backend/internal/dates"
	"github.com/navtrail/navtrail-backend/internal/domain"
)

type addPurchaseRequest struct {
	SchemeCode   int             `json:"schemeCode"`
	Units        decimal.Decimal `json:"units"`
	PurchaseDate string          `json:"purchaseDate"`
}

// purchaseResponse is the wire shape of a stored purchase.
type purchaseResponse struct {
	ID           uuid.UUID       `json:"id"`
	SchemeCode   int             `json:"schemeCode"`
	SchemeName   string          `json:"schemeName"`
	Units        decimal.Decimal `json:"units"`
	PurchaseDate string          `json:"purchaseDate"`
	PurchaseNAV  decimal.Decimal `json:"purchaseNav"`
}

func (s *Server) handleAddPurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
		return
	}

	var req addPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, s.log, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}

	purchase, err := s.portfolio.AddPurchase(r.Context(), userID, req.SchemeCode, req.Units, req.PurchaseDate)
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	respondMessage(w, http.StatusCreated, "Purchase added", purchaseResponse{
		ID:           purchase.ID,
		SchemeCode:   purchase.SchemeCode,
		SchemeName:   purchase.SchemeName,
		Units:        purchase.Units,
		PurchaseDate: dates.FormatDMY(purchase.PurchaseDate),
		PurchaseNAV:  purchase.PurchaseNAV,
	})
}

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
		return
	}

	positions, err := s.portfolio.ListPositions(r.Context(), userID)
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	respondData(w, http.StatusOK, positions)
}

func (s *Server) handlePortfolioValue(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
		return
	}

	report, err := s.valuation.PortfolioValue(r.Context(), userID)
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	respondData(w, http.StatusOK, report)
}

func (s *Server) handlePortfolioHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
		return
	}

	snapshots, err := s.history.PortfolioHistory(r.Context(), userID,
		r.URL.Query().Get("startDate"),
		r.URL.Query().Get("endDate"))
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	respondData(w, http.StatusOK, snapshots)
}

func (s *Server) handleRemovePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
		return
	}

	schemeCode, err := strconv.Atoi(r.URL.Query().Get("schemeCode"))
	if err != nil {
		respondError(w, s.log, fmt.Errorf("%w: scheme code must be a number", domain.ErrInvalidInput))
		return
	}

	err = s.portfolio.RemovePurchase(r.Context(), userID, schemeCode, r.URL.Query().Get("purchaseDate"))
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	respondMessage(w, http.StatusOK, "Purchase removed", nil)
}
