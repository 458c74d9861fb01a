package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/usecase"
	"dental-clinic-api/pkg/response"
	"dental-clinic-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

func (h *AvailabilityHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req dto.SetAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	availability, err := h.availabilityUsecase.SetAvailability(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrNotOwnAvailability:
			response.Forbidden(w, "You can only manage your own availability")
		case usecase.ErrInvalidDateFormat:
			response.Error(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD", nil)
		case usecase.ErrInvalidTimeFormat:
			response.Error(w, http.StatusBadRequest, "Invalid time format, use HH:MM", nil)
		case usecase.ErrInvalidTimeRange:
			response.Error(w, http.StatusBadRequest, "Start time must be before end time", nil)
		case usecase.ErrAvailabilityOverlap:
			response.Conflict(w, "Availability window overlaps an existing window")
		default:
			response.InternalServerError(w, "Failed to set availability")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Availability set successfully", availability)
}

func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["doctorId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	availabilities, err := h.availabilityUsecase.GetAvailability(r.Context(), doctorID)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to get availability")
		}
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availabilities)
}

func (h *AvailabilityHandler) DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid availability ID", nil)
		return
	}

	err = h.availabilityUsecase.DeleteAvailability(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrAvailabilityNotFound:
			response.NotFound(w, "Availability window not found")
		default:
			response.InternalServerError(w, "Failed to delete availability")
		}
		return
	}

	response.Success(w, http.StatusOK, "Availability deleted successfully", nil)
}
