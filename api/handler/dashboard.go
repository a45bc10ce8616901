package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/pkg/httpcontext"
	analyticsUC "github.com/SimalChaudhari/rebook-aI-backend/usecase/analytics"
)

type DashboardHandler struct {
	baseHandler
	uc *analyticsUC.UseCase
}

func NewDashboardHandler(uc *analyticsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Dashboard metrics
// @Tags dashboard
// @Router /api/dashboard/metrics [get]
func (h *DashboardHandler) Metrics(ctx *fasthttp.RequestCtx) {
	businessID := string(ctx.QueryArgs().Peek("businessId"))

	var rng *analyticsUC.DateRange
	from := parseTimePtr(string(ctx.QueryArgs().Peek("from")))
	to := parseTimePtr(string(ctx.QueryArgs().Peek("to")))
	if from != nil || to != nil {
		rng = &analyticsUC.DateRange{From: from, To: to}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	metrics, err := h.uc.Dashboard(stdCtx, businessID, rng)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, metrics)
}
