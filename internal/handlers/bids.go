package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"tenderbid/internal/service"
	"tenderbid/models"
)

type createBidRequest struct {
	Name        string            `json:"name" validate:"required,max=100"`
	Description string            `json:"description" validate:"required,max=500"`
	TenderID    uuid.UUID         `json:"tenderId" validate:"required"`
	AuthorType  models.AuthorType `json:"authorType" validate:"required"`
	AuthorID    uuid.UUID         `json:"authorId" validate:"required"`
}

// CreateBidHandler обрабатывает POST /api/bids/new. Неизвестный authorType
// отклоняет сервис.
func (h *Handler) CreateBidHandler(w http.ResponseWriter, r *http.Request) {
	var req createBidRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	bid, err := h.Bids.CreateBid(r.Context(), service.CreateBidInput{
		Name:        req.Name,
		Description: req.Description,
		TenderID:    req.TenderID,
		AuthorType:  req.AuthorType,
		AuthorID:    req.AuthorID,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

// GetUserBidsHandler возвращает предложения, видимые пользователю
func (h *Handler) GetUserBidsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	bids, err := h.Bids.ListBids(r.Context(), service.Filter{
		Username: username,
		Limit:    params.Limit,
		Offset:   params.Offset,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

func (h *Handler) GetBidsForTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := urlUUID(r, "tenderId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	params := parsePaginationParams(r)
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	bids, err := h.Bids.ListBids(r.Context(), service.Filter{
		TenderID: &tenderID,
		Username: username,
		Limit:    params.Limit,
		Offset:   params.Offset,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

func (h *Handler) GetBidStatusHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := urlUUID(r, "bidId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	status, err := h.Bids.GetBidStatus(r.Context(), bidID, strings.TrimSpace(r.URL.Query().Get("username")))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) UpdateBidStatusHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := urlUUID(r, "bidId")
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

	bid, err := h.Bids.ChangeBidStatus(r.Context(), bidID, username, models.BidStatus(status))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

func (h *Handler) EditBidHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := urlUUID(r, "bidId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var patch models.BidPatch
	if err := h.decodeBody(w, r, &patch); err != nil {
		h.handleError(w, r, err)
		return
	}

	bid, err := h.Bids.EditBid(r.Context(), bidID, username, patch)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

func (h *Handler) RollbackBidHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := urlUUID(r, "bidId")
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

	bid, err := h.Bids.RollbackBid(r.Context(), bidID, username, version)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

// SubmitBidDecisionHandler принимает Approved или Rejected
func (h *Handler) SubmitBidDecisionHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := urlUUID(r, "bidId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	decision, err := requiredQuery(r, "decision")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	bid, err := h.Bids.SubmitDecision(r.Context(), bidID, username, models.Decision(decision))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

func (h *Handler) CreateBidFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := urlUUID(r, "bidId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	feedback, err := requiredQuery(r, "bidFeedback")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	bid, err := h.Bids.AddFeedback(r.Context(), bidID, username, feedback)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

// GetBidReviewsHandler возвращает отзывы на предложения автора по тендеру
func (h *Handler) GetBidReviewsHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := urlUUID(r, "tenderId")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	author, err := requiredQuery(r, "authorUsername")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	requester, err := requiredQuery(r, "requesterUsername")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	params := parsePaginationParams(r)

	reviews, err := h.Bids.GetReviews(r.Context(), tenderID, author, requester, service.Filter{
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}
