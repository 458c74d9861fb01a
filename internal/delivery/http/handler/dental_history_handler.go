package handler

import (
	"encoding/json"
	"net/http"

	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/usecase"
	"dental-clinic-api/pkg/response"
	"dental-clinic-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DentalHistoryHandler struct {
	historyUsecase usecase.DentalHistoryUsecase
	validator      *validator.CustomValidator
}

func NewDentalHistoryHandler(historyUsecase usecase.DentalHistoryUsecase, validator *validator.CustomValidator) *DentalHistoryHandler {
	return &DentalHistoryHandler{
		historyUsecase: historyUsecase,
		validator:      validator,
	}
}

func (h *DentalHistoryHandler) GetPatientHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	patientID, err := uuid.Parse(vars["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	history, err := h.historyUsecase.GetPatientHistory(r.Context(), patientID)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		case usecase.ErrNotOwnHistory:
			response.Forbidden(w, "You can only view your own dental history")
		default:
			response.InternalServerError(w, "Failed to get dental history")
		}
		return
	}

	response.Success(w, http.StatusOK, "Dental history retrieved successfully", history)
}

func (h *DentalHistoryHandler) AddTreatmentRecord(w http.ResponseWriter, r *http.Request) {
	var req dto.AddTreatmentRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	record, err := h.historyUsecase.AddTreatmentRecord(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to add treatment record")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Treatment record added successfully", record)
}

func (h *DentalHistoryHandler) AddXrayRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	patientID, err := uuid.Parse(vars["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	var req dto.AddXrayRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	record, err := h.historyUsecase.AddXrayRecord(r.Context(), patientID, &req)
	if err != nil {
		switch err {
		case usecase.ErrHistoryNotFound:
			response.NotFound(w, "Dental history not found")
		default:
			response.InternalServerError(w, "Failed to add x-ray record")
		}
		return
	}

	response.Success(w, http.StatusCreated, "X-ray record added successfully", record)
}

func (h *DentalHistoryHandler) UpdateTreatmentPlan(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	patientID, err := uuid.Parse(vars["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	var req dto.UpdateTreatmentPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	history, err := h.historyUsecase.UpdateTreatmentPlan(r.Context(), patientID, &req)
	if err != nil {
		switch err {
		case usecase.ErrHistoryNotFound:
			response.NotFound(w, "Dental history not found")
		case usecase.ErrInvalidDateFormat:
			response.Error(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD", nil)
		default:
			response.InternalServerError(w, "Failed to update treatment plan")
		}
		return
	}

	response.Success(w, http.StatusOK, "Treatment plan updated successfully", history)
}

func (h *DentalHistoryHandler) UpdateMedicalInfo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	patientID, err := uuid.Parse(vars["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	var req dto.UpdateMedicalInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	history, err := h.historyUsecase.UpdateMedicalInfo(r.Context(), patientID, &req)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to update medical info")
		}
		return
	}

	response.Success(w, http.StatusOK, "Medical info updated successfully", history)
}

func (h *DentalHistoryHandler) UpdateTeethCondition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	patientID, err := uuid.Parse(vars["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	var req dto.UpdateTeethConditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	history, err := h.historyUsecase.UpdateTeethCondition(r.Context(), patientID, &req)
	if err != nil {
		switch err {
		case usecase.ErrHistoryNotFound:
			response.NotFound(w, "Dental history not found")
		case usecase.ErrTeethOutOfRange:
			response.Error(w, http.StatusBadRequest, "Tooth numbers must be between 1 and 32", nil)
		default:
			response.InternalServerError(w, "Failed to update teeth condition")
		}
		return
	}

	response.Success(w, http.StatusOK, "Teeth condition updated successfully", history)
}
