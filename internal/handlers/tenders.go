package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"tenderbid/internal/service"
	"tenderbid/models"
)

type createTenderRequest struct {
	Name            string             `json:"name" validate:"required,max=100"`
	Description     string             `json:"description" validate:"required,max=500"`
	ServiceType     models.ServiceType `json:"serviceType" validate:"required,oneof=Construction Delivery Manufacture"`
	OrganizationID  uuid.UUID          `json:"organizationId" validate:"required"`
	CreatorUsername string             `json:"creatorUsername" validate:"required,max=50"`
}

// CreateTenderHandler обрабатывает POST /api/tenders/new запрос
func (h *Handler) CreateTenderHandler(w http.ResponseWriter, r *http.Request) {
	var req createTenderRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	tender, err := h.Tenders.CreateTender(r.Context(), service.CreateTenderInput{
		Name:            req.Name,
		Description:     req.Description,
		ServiceType:     req.ServiceType,
		OrganizationID:  req.OrganizationID,
		CreatorUsername: strings.TrimSpace(req.CreatorUsername),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tender)
}

// GetTendersHandler возвращает список тендеров с фильтрами по типу service_type
func (h *Handler) GetTendersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	// service_type может повторяться
	var serviceTypes []models.ServiceType
	for _, v := range r.URL.Query()["service_type"] {
		serviceTypes = append(serviceTypes, models.ServiceType(v))
	}

	tenders, err := h.Tenders.ListTenders(r.Context(), service.Filter{
		ServiceTypes: serviceTypes,
		Username:     strings.TrimSpace(r.URL.Query().Get("username")),
		Limit:        params.Limit,
		Offset:       params.Offset,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tenders)
}

// GetUserTendersHandler возвращает список тендеров для пользователя username
func (h *Handler) GetUserTendersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	tenders, err := h.Tenders.ListUserTenders(r.Context(), service.Filter{
		Username: username,
		Limit:    params.Limit,
		Offset:   params.Offset,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tenders)
}

// GetTenderStatusHandler: username необязателен для опубликованных тендеров
func (h *Handler) GetTenderStatusHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := urlUUID(r, "tenderId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	status, err := h.Tenders.GetTenderStatus(r.Context(), tenderID, strings.TrimSpace(r.URL.Query().Get("username")))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) ChangeTenderStatusHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := urlUUID(r, "tenderId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	status, err := requiredQuery(r, "status")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	tender, err := h.Tenders.ChangeTenderStatus(r.Context(), tenderID, username, models.TenderStatus(status))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tender)
}

// EditTenderHandler создаёт новую версию тендера из переданных полей
func (h *Handler) EditTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := urlUUID(r, "tenderId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var patch models.TenderPatch
	if err := h.decodeBody(w, r, &patch); err != nil {
		h.handleError(w, r, err)
		return
	}

	tender, err := h.Tenders.EditTender(r.Context(), tenderID, username, patch)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tender)
}

func (h *Handler) RollbackTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := urlUUID(r, "tenderId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	version, err := urlVersion(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	tender, err := h.Tenders.RollbackTender(r.Context(), tenderID, username, version)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tender)
}
