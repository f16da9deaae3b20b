package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pawws/pawws/internal/ctxkeys"
	"github.com/pawws/pawws/internal/model"
	"github.com/pawws/pawws/internal/service"
	"github.com/pawws/pawws/internal/validation"
)

type DonationHandler struct {
	donationService   *service.DonationService
	settingsService   *service.SettingsService
	appURL            string
	maxUploadSize     int64
	anonymousDonating bool
}

func NewDonationHandler(
	donationService *service.DonationService,
	settingsService *service.SettingsService,
	appURL string,
	maxUploadSize int64,
	anonymousDonating bool,
) *DonationHandler {
	return &DonationHandler{
		donationService:   donationService,
		settingsService:   settingsService,
		appURL:            appURL,
		maxUploadSize:     maxUploadSize,
		anonymousDonating: anonymousDonating,
	}
}

type donationResponse struct {
	*model.Donation
	AnimalID   string `json:"animal_id,omitempty"`
	AnimalName string `json:"animal_name,omitempty"`
	ProofURL   string `json:"proof_url"`
}

func (h *DonationHandler) response(d *model.Donation) donationResponse {
	return donationResponse{
		Donation: d,
		ProofURL: fmt.Sprintf("%s/api/donations/%s/proof", h.appURL, d.ID),
	}
}

func (h *DonationHandler) listResponse(donations []*model.DonationWithAnimal) []donationResponse {
	resp := make([]donationResponse, 0, len(donations))
	for _, d := range donations {
		item := h.response(&d.Donation)
		item.AnimalID = d.AnimalID
		item.AnimalName = d.AnimalName
		resp = append(resp, item)
	}
	return resp
}

// Submit takes a multipart form with milestone_id, amount and the proof file.
func (h *DonationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	if user == nil && !h.anonymousDonating {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	err := parseMultipart(w, r, h.maxUploadSize)
	if err != nil {
		writeUploadError(w, r, err)
		return
	}

	// An unparsable amount is reported as a non-positive one
	amount, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue("amount")), 10, 64)

	in := service.SubmitInput{
		MilestoneID: r.FormValue("milestone_id"),
		Amount:      amount,
	}
	if user != nil {
		in.UserID = &user.ID
	}

	// Type checks only run once there is a valid amount, keeping the
	// amount error first.
	if amount > 0 {
		file, contentType, err := formFile(r, "proof", validation.ImageConstraints, validation.ReceiptConstraints)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if file != nil {
			defer file.Close()
			in.Proof = file
			in.ProofContentType = contentType
		}
	}

	donation, err := h.donationService.Submit(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.response(donation))
}

func (h *DonationHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)

	donations, err := h.donationService.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.listResponse(donations))
}

func (h *DonationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	donations, err := h.donationService.Mine(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.listResponse(donations))
}

// Decide reads the new status from the status query parameter or a JSON body.
func (h *DonationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		var req struct {
			Status string `json:"status"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		status = req.Status
	}

	donation, err := h.donationService.Decide(r.Context(), r.PathValue("id"), model.DonationStatus(strings.ToLower(status)), ctxkeys.User(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.response(donation))
}

func (h *DonationHandler) Proof(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.donationService.Proof(r.Context(), r.PathValue("id"), ctxkeys.User(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	streamBlob(w, r, rc, contentType)
}

func (h *DonationHandler) PaymentQR(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.settingsService.PaymentQR(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	streamBlob(w, r, rc, contentType)
}

func (h *DonationHandler) SetPaymentQR(w http.ResponseWriter, r *http.Request) {
	err := parseMultipart(w, r, h.maxUploadSize)
	if err != nil {
		writeUploadError(w, r, err)
		return
	}

	file, contentType, err := formFile(r, "image", validation.ImageConstraints)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if file == nil {
		writeDetail(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	qr, err := h.settingsService.SetPaymentQR(r.Context(), ctxkeys.User(r.Context()), file, contentType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"image_url":  h.appURL + "/api/donations/qr",
		"updated_at": qr.UpdatedAt,
	})
}
