package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/api/transport"
	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/pkg/httpcontext"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
	customerUC "github.com/SimalChaudhari/rebook-aI-backend/usecase/customer"
)

type CustomerHandler struct {
	baseHandler
	uc *customerUC.UseCase
}

func NewCustomerHandler(uc *customerUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List customers
// @Tags customers
// @Router /api/customers [get]
func (h *CustomerHandler) List(ctx *fasthttp.RequestCtx) {
	filter := repository.CustomerFilter{
		BusinessID: string(ctx.QueryArgs().Peek("businessId")),
		Status:     domain.Status(ctx.QueryArgs().Peek("status")),
		Search:     string(ctx.QueryArgs().Peek("search")),
		SortBy:     string(ctx.QueryArgs().Peek("sortBy")),
		SortDesc:   string(ctx.QueryArgs().Peek("order")) == "desc",
		Limit:      parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset:     parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	customers, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, customers, len(customers), filter.Limit, filter.Offset)
}

// @Summary Get customer details
// @Tags customers
// @Router /api/customers/{businessId}/{userId} [get]
func (h *CustomerHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	customer, err := h.uc.Get(stdCtx, h.pathValue(ctx, "businessId"), h.pathValue(ctx, "userId"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, customer)
}

// @Summary Update customer status
// @Tags customers
// @Router /api/customers/{businessId}/{userId}/status [patch]
func (h *CustomerHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	var req transport.StatusUpdateRequest
	if !h.parseBody(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	customer, err := h.uc.SetStatus(stdCtx, h.pathValue(ctx, "businessId"), h.pathValue(ctx, "userId"), domain.Status(req.Status))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, customer)
}

// @Summary Get customer analytics
// @Tags customers
// @Router /api/customers/{businessId}/{userId}/analytics [get]
func (h *CustomerHandler) Analytics(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	analytics, err := h.uc.GetAnalytics(stdCtx, h.pathValue(ctx, "businessId"), h.pathValue(ctx, "userId"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, analytics)
}

// @Summary Delete customer
// @Tags customers
// @Router /api/customers/{businessId}/{userId} [delete]
func (h *CustomerHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, h.pathValue(ctx, "businessId"), h.pathValue(ctx, "userId")); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Record a visit
// @Tags customers
// @Router /api/customers/{businessId}/{userId}/add-visit [post]
func (h *CustomerHandler) AddVisit(ctx *fasthttp.RequestCtx) {
	var req transport.VisitRequest
	if !h.parseBody(ctx, &req) {
		return
	}

	input := customerUC.VisitInput{
		ID:      req.VisitID,
		Date:    parseDate(req.Date),
		Service: req.Service,
		Staff:   req.Staff,
		Amount:  req.Amount,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.RecordVisit(stdCtx, h.pathValue(ctx, "businessId"), h.pathValue(ctx, "userId"), input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Record a payment
// @Tags customers
// @Router /api/customers/{businessId}/{userId}/add-payment [post]
func (h *CustomerHandler) AddPayment(ctx *fasthttp.RequestCtx) {
	var req transport.PaymentRequest
	if !h.parseBody(ctx, &req) {
		return
	}

	input := customerUC.PaymentInput{
		ID:            req.PaymentID,
		ServiceID:     req.ServiceID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		Date:          parseDate(req.Date),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	customer, err := h.uc.RecordPayment(stdCtx, h.pathValue(ctx, "businessId"), h.pathValue(ctx, "userId"), input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, customer)
}

// @Summary Record a rating
// @Tags customers
// @Router /api/customers/{businessId}/{userId}/add-rating [post]
func (h *CustomerHandler) AddRating(ctx *fasthttp.RequestCtx) {
	var req transport.RatingRequest
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

	result, err := h.uc.RecordRating(stdCtx, h.pathValue(ctx, "businessId"), h.pathValue(ctx, "userId"), input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func parseTimePtr(value string) *time.Time {
	if value == "" {
		return nil
	}
	if parsed := parseDate(value); !parsed.IsZero() {
		return &parsed
	}
	return nil
}
