package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tenderbid/internal/service"
	"tenderbid/models"
)

// максимальный размер тела запроса
const maxBodyBytes = 1 << 20

// Handler переводит HTTP-запросы в вызовы сервисов.
type Handler struct {
	Tenders  TenderService
	Bids     BidService
	Store    Pinger
	log      zerolog.Logger
	validate *validator.Validate
}

func NewHandler(tenders TenderService, bids BidService, store Pinger, log zerolog.Logger) *Handler {
	return &Handler{
		Tenders:  tenders,
		Bids:     bids,
		Store:    store,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// PingHandler отвечает "ok", если хранилище доступно
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("ping storage")
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type errorResponse struct {
	Reason string `json:"reason"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, errorResponse{Reason: reason})
}

// handleError сопоставляет доменные ошибки с HTTP-статусами.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrInvariant):
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("invariant violation")
		writeError(w, http.StatusInternalServerError, "internal error")
	case errors.Is(err, service.ErrUnknownUser):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody читает JSON-тело с ограничением размера и валидирует его по тегам validate.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", models.ErrBadRequest, err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}
	return nil
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams парсит limit и offset из query, с дефолтами и ограничениями
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: service.DefaultLimit}

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= service.MaxLimit {
		params.Limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	return params
}

func urlUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", models.ErrBadRequest, name)
	}
	return id, nil
}

func urlVersion(r *http.Request) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: invalid version", models.ErrBadRequest)
	}
	return v, nil
}

// requiredQuery возвращает обязательный параметр запроса без пробелов по краям.
func requiredQuery(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", fmt.Errorf("%w: missing %s parameter", models.ErrBadRequest, name)
	}
	return v, nil
}
