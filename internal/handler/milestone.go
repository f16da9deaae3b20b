package handler

import (
	"net/http"

	"github.com/pawws/pawws/internal/ctxkeys"
	"github.com/pawws/pawws/internal/service"
)

type MilestoneHandler struct {
	milestoneService *service.MilestoneService
	ledgerService    *service.LedgerService
}

func NewMilestoneHandler(milestoneService *service.MilestoneService, ledgerService *service.LedgerService) *MilestoneHandler {
	return &MilestoneHandler{
		milestoneService: milestoneService,
		ledgerService:    ledgerService,
	}
}

type createMilestoneRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

func (h *MilestoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMilestoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	milestone, err := h.milestoneService.Create(r.Context(), service.CreateMilestoneInput{
		AnimalID:    r.PathValue("id"),
		Title:       req.Title,
		Description: req.Description,
		Cost:        req.Cost,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, milestone)
}

func (h *MilestoneHandler) Get(w http.ResponseWriter, r *http.Request) {
	milestone, err := h.milestoneService.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, milestone)
}

// Credit is the administrative ledger adjustment.
func (h *MilestoneHandler) Credit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	milestone, err := h.ledgerService.Credit(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, milestone)
}

func (h *MilestoneHandler) Complete(w http.ResponseWriter, r *http.Request) {
	milestone, err := h.milestoneService.Complete(r.Context(), r.PathValue("id"), ctxkeys.User(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, milestone)
}

// DirectContribute is the unreviewed legacy donation path.
func (h *MilestoneHandler) DirectContribute(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	milestone, err := h.milestoneService.DirectContribute(r.Context(), r.PathValue("id"), r.PathValue("milestoneID"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, milestone)
}
