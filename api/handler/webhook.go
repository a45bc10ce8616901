package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/api/transport"
	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/pkg/httpcontext"
	customerUC "github.com/SimalChaudhari/rebook-aI-backend/usecase/customer"
)

// WebhookHandler receives booking-system events. It is the main ingestion
// path: every event upserts the customer profile and appends a visit.
type WebhookHandler struct {
	baseHandler
	uc          *customerUC.UseCase
	verifyToken string
}

func NewWebhookHandler(uc *customerUC.UseCase, verifyToken string, adapter *httpcontext.Adapter, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		verifyToken: verifyToken,
	}
}

// @Summary Ingest customer event
// @Tags webhook
// @Router /api/webhook/customer [post]
func (h *WebhookHandler) HandleCustomerEvent(ctx *fasthttp.RequestCtx) {
	var req transport.WebhookCustomerRequest
	if !h.parseBody(ctx, &req) {
		return
	}

	input := customerUC.VisitInput{
		ID:      req.VisitID,
		Date:    parseDate(req.LastVisitDate),
		Service: req.LastService,
		Staff:   req.AssignedStaff,
		Amount:  req.TransactionValue,
		Profile: customerUC.ProfileFields{
			FullName:    req.FullName,
			PhoneNumber: req.PhoneNumber,
			Email:       req.Email,
		},
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.RecordVisit(stdCtx, req.BusinessID, req.UserID, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Verify webhook subscription
// @Tags webhook
// @Router /api/webhook/customer [get]
func (h *WebhookHandler) VerifySubscription(ctx *fasthttp.RequestCtx) {
	mode := string(ctx.QueryArgs().Peek("hub.mode"))
	token := string(ctx.QueryArgs().Peek("hub.verify_token"))
	challenge := ctx.QueryArgs().Peek("hub.challenge")

	if mode != "subscribe" || h.verifyToken == "" || token != h.verifyToken {
		h.respondJSON(ctx, http.StatusForbidden, transport.NewError(string(domain.ErrCodeInvalid), "verification failed", nil))
		return
	}

	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(challenge)
}

// parseDate accepts RFC3339 or a bare date; anything else falls back to the
// zero time, which the use case replaces with now.
func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed
	}
	return time.Time{}
}
