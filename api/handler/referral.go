package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/api/transport"
	"github.com/SimalChaudhari/rebook-aI-backend/pkg/httpcontext"
	referralUC "github.com/SimalChaudhari/rebook-aI-backend/usecase/referral"
)

type ReferralHandler struct {
	baseHandler
	uc *referralUC.UseCase
}

func NewReferralHandler(uc *referralUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ReferralHandler {
	return &ReferralHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Generate a referral link and QR code
// @Tags referrals
// @Router /api/referrals/{businessId}/{userId}/generate [post]
func (h *ReferralHandler) Generate(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	link, err := h.uc.Generate(stdCtx, h.pathValue(ctx, "businessId"), h.pathValue(ctx, "userId"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, link)
}

// @Summary Track a referral link click
// @Tags referrals
// @Router /api/referrals/track/{referralCode}/click [post]
func (h *ReferralHandler) TrackClick(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.TrackClick(stdCtx, h.pathValue(ctx, "referralCode")); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "click recorded"})
}

// @Summary Track a referral conversion
// @Tags referrals
// @Router /api/referrals/track/{referralCode}/conversion [post]
func (h *ReferralHandler) TrackConversion(ctx *fasthttp.RequestCtx) {
	var req transport.ConversionRequest
	if len(ctx.PostBody()) > 0 && !h.parseBody(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.TrackConversion(stdCtx, h.pathValue(ctx, "referralCode"), req.NewUserID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "conversion recorded"})
}

// @Summary Referral statistics for a business
// @Tags referrals
// @Router /api/referrals/stats/{businessId} [get]
func (h *ReferralHandler) Stats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Stats(stdCtx, h.pathValue(ctx, "businessId"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}

// @Summary Delete a referral
// @Tags referrals
// @Router /api/referrals/{referralCode} [delete]
func (h *ReferralHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, h.pathValue(ctx, "referralCode")); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Referral landing
// @Tags referrals
// @Router /refer/{referralCode} [get]
func (h *ReferralHandler) Landing(ctx *fasthttp.RequestCtx) {
	code := h.pathValue(ctx, "referralCode")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	referral, err := h.uc.Get(stdCtx, code)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	// landing visits count as clicks
	if err := h.uc.TrackClick(stdCtx, code); err != nil {
		h.logger.Warn("failed to record landing click", zap.String("referral_code", code), zap.Error(err))
	}
	h.respondSuccess(ctx, http.StatusOK, referral)
}
