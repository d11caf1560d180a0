package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/matiasrios/facegate/internal/attendance"
	"github.com/matiasrios/facegate/internal/extractor"
)

// FaceExtractor turns a captured image into a face embedding.
type FaceExtractor interface {
	ExtractFace(ctx context.Context, imageData []byte) ([]float32, error)
}

// AttendanceHandler serves the recognition and claim-validation endpoints.
type AttendanceHandler struct {
	svc       *attendance.Service
	extractor FaceExtractor
}

// NewAttendanceHandler creates a new AttendanceHandler. The extractor may be
// nil when clients always send precomputed embeddings.
func NewAttendanceHandler(svc *attendance.Service, ex FaceExtractor) *AttendanceHandler {
	return &AttendanceHandler{svc: svc, extractor: ex}
}

type validateRequest struct {
	EmployeeID string `json:"employee_id"`
	Shift      string `json:"shift"`
}

// Validate handles POST /attendance/validate, the claim pre-check run before
// the kiosk captures a face.
func (h *AttendanceHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	result := h.svc.ValidateClaim(r.Context(), req.EmployeeID, req.Shift)
	respondJSON(w, statusFor(result.Reason), result)
}

type recognizeRequest struct {
	EmployeeID string    `json:"employee_id"`
	Shift      string    `json:"shift"`
	Embedding  []float32 `json:"embedding"`
	// ImageBase64 carries a captured photo when the kiosk cannot compute
	// embeddings locally; it is ignored when Embedding is present.
	ImageBase64 string `json:"image_base64"`
}

// Recognize handles POST /attendance/recognize: one full recognition attempt
// ending in a recorded event or a structured rejection.
func (h *AttendanceHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	var req recognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	probe := req.Embedding
	if len(probe) == 0 && req.ImageBase64 != "" {
		if h.extractor == nil {
			respondError(w, http.StatusBadRequest, "image input is not supported, send an embedding")
			return
		}
		image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid base64 image")
			return
		}
		probe, err = h.extractor.ExtractFace(r.Context(), image)
		if err != nil {
			h.respondExtractionError(w, req.EmployeeID, err)
			return
		}
	}

	result := h.svc.RecognizeAndRecord(r.Context(), req.EmployeeID, req.Shift, probe)
	if !result.OK {
		log.Printf("attendance rejected for %s: %s", sanitizeForLog(req.EmployeeID), result.Reason)
	}
	respondJSON(w, statusFor(result.Reason), result)
}

func (h *AttendanceHandler) respondExtractionError(w http.ResponseWriter, employeeID string, err error) {
	switch {
	case errors.Is(err, extractor.ErrNoFace), errors.Is(err, extractor.ErrMultipleFaces):
		respondJSON(w, http.StatusOK, attendance.RecognizeResult{
			Reason:  attendance.ReasonInvalidEmbedding,
			Message: err.Error(),
		})
	default:
		log.Printf("embedding extraction for %s failed: %v", sanitizeForLog(employeeID), err)
		respondError(w, http.StatusBadGateway, "embedding service unavailable")
	}
}
