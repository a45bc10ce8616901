package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/api/transport"
	"github.com/SimalChaudhari/rebook-aI-backend/pkg/httpcontext"
	customerUC "github.com/SimalChaudhari/rebook-aI-backend/usecase/customer"
)

type ReviewHandler struct {
	baseHandler
	uc *customerUC.UseCase
}

func NewReviewHandler(uc *customerUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Request a review from a customer
// @Tags reviews
// @Router /api/reviews/request [post]
func (h *ReviewHandler) Request(ctx *fasthttp.RequestCtx) {
	var req transport.ReviewRequest
	if !h.parseBody(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.RequestReview(stdCtx, req.BusinessID, req.UserID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "review request sent"})
}

// @Summary Submit a customer review
// @Tags reviews
// @Router /api/reviews/submit [post]
func (h *ReviewHandler) Submit(ctx *fasthttp.RequestCtx) {
	var req transport.ReviewSubmitRequest
	if !h.parseBody(ctx, &req) {
		return
	}

	input := customerUC.RatingInput{
		Rating:     req.Rating,
		Feedback:   req.Feedback,
		ReviewLink: req.ReviewLink,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.RecordRating(stdCtx, req.BusinessID, req.UserID, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}
