package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pawws/pawws/internal/model"
	"github.com/pawws/pawws/internal/service"
	"github.com/pawws/pawws/internal/validation"
)

type AnimalHandler struct {
	animalService *service.AnimalService
	appURL        string
	maxUploadSize int64
}

func NewAnimalHandler(animalService *service.AnimalService, appURL string, maxUploadSize int64) *AnimalHandler {
	return &AnimalHandler{
		animalService: animalService,
		appURL:        appURL,
		maxUploadSize: maxUploadSize,
	}
}

type createAnimalRequest struct {
	Name          string `json:"name"`
	Bio           string `json:"bio"`
	AdmissionDate string `json:"admission_date"` // RFC 3339 or YYYY-MM-DD
	Status        string `json:"status"`
	JourneyStory  string `json:"journey_story"`
}

type animalResponse struct {
	*model.Animal
	ImageURL  *string `json:"image_url"`
	StoryHTML string  `json:"story_html,omitempty"`
}

func (h *AnimalHandler) response(animal *model.Animal) animalResponse {
	resp := animalResponse{Animal: animal}
	if animal.HasImage() {
		url := fmt.Sprintf("%s/api/animals/%s/image", h.appURL, animal.ID)
		resp.ImageURL = &url
	}
	return resp
}

func (h *AnimalHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)

	animals, err := h.animalService.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]animalResponse, 0, len(animals))
	for _, a := range animals {
		resp = append(resp, h.response(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AnimalHandler) Get(w http.ResponseWriter, r *http.Request) {
	animal, err := h.animalService.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := h.response(animal)
	resp.StoryHTML, err = h.animalService.StoryHTML(animal)
	if err != nil {
		// The markdown source is still in journey_story
		slog.Warn("failed to render journey story", "error", err, "animal_id", animal.ID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AnimalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAnimalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	admitted, err := parseDate(req.AdmissionDate)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "admission_date must be RFC 3339 or YYYY-MM-DD")
		return
	}

	animal, err := h.animalService.Create(r.Context(), service.CreateAnimalInput{
		Name:          req.Name,
		Bio:           req.Bio,
		AdmissionDate: admitted,
		Status:        req.Status,
		JourneyStory:  req.JourneyStory,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.response(animal))
}

func (h *AnimalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.animalService.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AnimalHandler) SetImage(w http.ResponseWriter, r *http.Request) {
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

	animal, err := h.animalService.SetImage(r.Context(), r.PathValue("id"), file, contentType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.response(animal))
}

func (h *AnimalHandler) Image(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.animalService.Image(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	streamBlob(w, r, rc, contentType)
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
