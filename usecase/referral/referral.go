package referral

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
	"github.com/SimalChaudhari/rebook-aI-backend/usecase"
)

const qrImageSize = 300

// UseCase owns referral-link bookkeeping: one code per (business, referrer),
// click/conversion counters and the shareable QR image.
type UseCase struct {
	referrals  repository.ReferralRepository
	customers  repository.CustomerRepository
	businesses repository.BusinessRepository
	notifier   usecase.Notifier
	baseURL    string
	logger     *zap.Logger
	now        func() time.Time
}

func New(
	referrals repository.ReferralRepository,
	customers repository.CustomerRepository,
	businesses repository.BusinessRepository,
	notifier usecase.Notifier,
	baseURL string,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		referrals:  referrals,
		customers:  customers,
		businesses: businesses,
		notifier:   notifier,
		baseURL:    baseURL,
		logger:     logger,
		now:        time.Now,
	}
}

// Link is the shareable referral bundle returned to the caller.
type Link struct {
	ReferralCode string `json:"referral_code"`
	ReferralLink string `json:"referral_link"`
	QRCode       string `json:"qr_code"`
}

// Generate returns the referrer's existing link or creates a new one. Both
// the customer and the business must exist.
func (uc *UseCase) Generate(ctx context.Context, businessID, userID string) (*Link, error) {
	if _, err := uc.customers.GetByKey(ctx, businessID, userID); err != nil {
		return nil, err
	}
	if _, err := uc.businesses.Get(ctx, businessID); err != nil {
		return nil, err
	}

	referral, err := uc.referrals.GetByReferrer(ctx, businessID, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrReferralNotFound) {
			return nil, err
		}
		referral = &domain.Referral{
			ReferralCode:   newReferralCode(businessID, userID, uc.now()),
			BusinessID:     businessID,
			ReferrerUserID: userID,
			CreatedAt:      uc.now(),
		}
		if err := uc.referrals.Create(ctx, referral); err != nil {
			return nil, err
		}
	}

	return uc.buildLink(referral.ReferralCode)
}

// TrackClick bumps the click counter for a referral code.
func (uc *UseCase) TrackClick(ctx context.Context, referralCode string) error {
	referral, err := uc.referrals.GetByCode(ctx, referralCode)
	if err != nil {
		return err
	}
	referral.Clicks++
	now := uc.now()
	referral.LastClickedAt = &now
	return uc.referrals.Update(ctx, referral)
}

// TrackConversion records that newUserID joined through the code. Converted
// users are deduplicated; the referrer gets a one-off conversion message.
func (uc *UseCase) TrackConversion(ctx context.Context, referralCode, newUserID string) error {
	referral, err := uc.referrals.GetByCode(ctx, referralCode)
	if err != nil {
		return err
	}

	referral.Conversions++
	now := uc.now()
	referral.LastConvertedAt = &now
	if newUserID != "" && !referral.HasConverted(newUserID) {
		referral.ConvertedUserIDs = append(referral.ConvertedUserIDs, newUserID)
	}
	if err := uc.referrals.Update(ctx, referral); err != nil {
		return err
	}

	uc.notifyReferrer(ctx, referral)
	return nil
}

// Get resolves a code for the landing page.
func (uc *UseCase) Get(ctx context.Context, referralCode string) (*domain.Referral, error) {
	return uc.referrals.GetByCode(ctx, referralCode)
}

// Stats lists all referral records of a business.
func (uc *UseCase) Stats(ctx context.Context, businessID string) ([]domain.Referral, error) {
	if businessID == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "businessId is required")
	}
	return uc.referrals.ListByBusiness(ctx, businessID)
}

// Delete removes a referral record by code.
func (uc *UseCase) Delete(ctx context.Context, referralCode string) error {
	return uc.referrals.Delete(ctx, referralCode)
}

func (uc *UseCase) buildLink(referralCode string) (*Link, error) {
	link := fmt.Sprintf("%s/refer/%s", uc.baseURL, referralCode)
	png, err := qrcode.Encode(link, qrcode.High, qrImageSize)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "qr code generation failed", err)
	}
	return &Link{
		ReferralCode: referralCode,
		ReferralLink: link,
		QRCode:       "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

func (uc *UseCase) notifyReferrer(ctx context.Context, referral *domain.Referral) {
	if uc.notifier == nil {
		return
	}
	referrer, err := uc.customers.GetByKey(ctx, referral.BusinessID, referral.ReferrerUserID)
	if err != nil {
		uc.logger.Warn("conversion notice skipped, referrer lookup failed",
			zap.String("referral_code", referral.ReferralCode), zap.Error(err))
		return
	}
	message := "Great news! Someone used your referral link and became a customer. Thank you for spreading the word about your business!"
	if !uc.notifier.Send(ctx, referrer.PhoneNumber, message, usecase.CategoryReferralConversion) {
		uc.logger.Warn("conversion notice not delivered",
			zap.String("referral_code", referral.ReferralCode))
	}
}

func newReferralCode(businessID, userID string, now time.Time) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s-%s-%d-%s", businessID, userID, now.UnixMilli(), hex.EncodeToString(buf))
}
