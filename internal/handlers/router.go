package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter собирает маршруты /api.
func NewRouter(h *Handler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)
		// тендеры
		r.Post("/tenders/new", h.CreateTenderHandler)
		r.Get("/tenders", h.GetTendersHandler)
		r.Get("/tenders/my", h.GetUserTendersHandler)
		r.Get("/tenders/{tenderId}/status", h.GetTenderStatusHandler)
		r.Put("/tenders/{tenderId}/status", h.ChangeTenderStatusHandler)
		r.Patch("/tenders/{tenderId}/edit", h.EditTenderHandler)
		r.Put("/tenders/{tenderId}/rollback/{version}", h.RollbackTenderHandler)
		// предложения (bids)
		r.Post("/bids/new", h.CreateBidHandler)
		r.Get("/bids/my", h.GetUserBidsHandler)
		r.Get("/bids/{tenderId}/list", h.GetBidsForTenderHandler)
		r.Get("/bids/{bidId}/status", h.GetBidStatusHandler)
		r.Put("/bids/{bidId}/status", h.UpdateBidStatusHandler)
		r.Patch("/bids/{bidId}/edit", h.EditBidHandler)
		r.Put("/bids/{bidId}/rollback/{version}", h.RollbackBidHandler)
		r.Put("/bids/{bidId}/submit_decision", h.SubmitBidDecisionHandler)
		r.Put("/bids/{bidId}/feedback", h.CreateBidFeedbackHandler)
		r.Get("/bids/{tenderId}/reviews", h.GetBidReviewsHandler)
	})
	return r
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
