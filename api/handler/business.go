package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/api/transport"
	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/pkg/httpcontext"
	businessUC "github.com/SimalChaudhari/rebook-aI-backend/usecase/business"
)

type BusinessHandler struct {
	baseHandler
	uc *businessUC.UseCase
}

func NewBusinessHandler(uc *businessUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *BusinessHandler {
	return &BusinessHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a business
// @Tags business
// @Router /api/business/create [post]
func (h *BusinessHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.BusinessCreateRequest
	if !h.parseBody(ctx, &req) {
		return
	}

	business := &domain.Business{
		BusinessID:     req.BusinessID,
		Name:           req.Name,
		OwnerName:      req.OwnerName,
		PhoneNumber:    req.PhoneNumber,
		Email:          req.Email,
		Address:        req.Address,
		WhatsAppNumber: req.WhatsAppNumber,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, business)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary List businesses
// @Tags business
// @Router /api/business/all [get]
func (h *BusinessHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	businesses, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, businesses)
}

// @Summary Get a business
// @Tags business
// @Router /api/business/{businessId} [get]
func (h *BusinessHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	business, err := h.uc.Get(stdCtx, h.pathValue(ctx, "businessId"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, business)
}

// @Summary Delete a business
// @Tags business
// @Router /api/business/{businessId} [delete]
func (h *BusinessHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, h.pathValue(ctx, "businessId")); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
