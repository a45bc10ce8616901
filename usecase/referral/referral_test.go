package referral

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
)

type memReferrals struct {
	mu   sync.Mutex
	rows map[string]domain.Referral
}

func newMemReferrals() *memReferrals {
	return &memReferrals{rows: map[string]domain.Referral{}}
}

func (m *memReferrals) GetByCode(_ context.Context, code string) (*domain.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[code]
	if !ok {
		return nil, domain.ErrReferralNotFound
	}
	copied := row
	return &copied, nil
}

func (m *memReferrals) GetByReferrer(_ context.Context, businessID, userID string) (*domain.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.BusinessID == businessID && row.ReferrerUserID == userID {
			copied := row
			return &copied, nil
		}
	}
	return nil, domain.ErrReferralNotFound
}

func (m *memReferrals) Create(_ context.Context, r *domain.Referral) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.ReferralCode] = *r
	return nil
}

func (m *memReferrals) Update(_ context.Context, r *domain.Referral) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[r.ReferralCode]; !ok {
		return domain.ErrReferralNotFound
	}
	m.rows[r.ReferralCode] = *r
	return nil
}

func (m *memReferrals) ListByBusiness(_ context.Context, businessID string) ([]domain.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Referral
	for _, row := range m.rows {
		if row.BusinessID == businessID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memReferrals) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[code]; !ok {
		return domain.ErrReferralNotFound
	}
	delete(m.rows, code)
	return nil
}

type memCustomers struct {
	rows map[string]domain.Customer
}

func custKey(businessID, userID string) string { return businessID + "/" + userID }

func (m *memCustomers) GetByKey(_ context.Context, businessID, userID string) (*domain.Customer, error) {
	row, ok := m.rows[custKey(businessID, userID)]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	copied := row
	return &copied, nil
}

func (m *memCustomers) Create(context.Context, *domain.Customer) error { return nil }
func (m *memCustomers) Update(context.Context, *domain.Customer) error { return nil }
func (m *memCustomers) Delete(context.Context, string, string) error   { return nil }
func (m *memCustomers) List(context.Context, repository.CustomerFilter) ([]domain.Customer, error) {
	return nil, nil
}

type memBusinesses struct {
	rows map[string]domain.Business
}

func (m *memBusinesses) Get(_ context.Context, businessID string) (*domain.Business, error) {
	row, ok := m.rows[businessID]
	if !ok {
		return nil, domain.ErrBusinessNotFound
	}
	copied := row
	return &copied, nil
}

func (m *memBusinesses) Create(context.Context, *domain.Business) error { return nil }
func (m *memBusinesses) List(context.Context) ([]domain.Business, error) {
	return nil, nil
}
func (m *memBusinesses) Delete(context.Context, string) error { return nil }

type sentMessage struct {
	Phone    string
	Category string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeNotifier) Send(_ context.Context, phone, _, category string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{Phone: phone, Category: category})
	return true
}

type fixture struct {
	uc        *UseCase
	referrals *memReferrals
	notifier  *fakeNotifier
}

func newFixture() *fixture {
	customers := &memCustomers{rows: map[string]domain.Customer{
		custKey("biz-1", "user-1"): {BusinessID: "biz-1", UserID: "user-1", PhoneNumber: "+919800000001"},
	}}
	businesses := &memBusinesses{rows: map[string]domain.Business{
		"biz-1": {BusinessID: "biz-1", Name: "Shine Salon"},
	}}
	referrals := newMemReferrals()
	notifier := &fakeNotifier{}
	uc := New(referrals, customers, businesses, notifier, "https://rebook.example.com", zap.NewNop())
	return &fixture{uc: uc, referrals: referrals, notifier: notifier}
}

func TestGenerateCreatesLinkAndQR(t *testing.T) {
	f := newFixture()

	link, err := f.uc.Generate(context.Background(), "biz-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if link.ReferralCode == "" {
		t.Fatal("expected a referral code")
	}
	if want := "https://rebook.example.com/refer/" + link.ReferralCode; link.ReferralLink != want {
		t.Fatalf("expected link %q, got %q", want, link.ReferralLink)
	}
	if !strings.HasPrefix(link.QRCode, "data:image/png;base64,") {
		t.Fatalf("expected a PNG data URL, got %.40s", link.QRCode)
	}
}

func TestGenerateIsStablePerReferrer(t *testing.T) {
	f := newFixture()

	first, err := f.uc.Generate(context.Background(), "biz-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.uc.Generate(context.Background(), "biz-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if first.ReferralCode != second.ReferralCode {
		t.Fatalf("same referrer must keep one code: %q vs %q", first.ReferralCode, second.ReferralCode)
	}
}

func TestGenerateUnknownCustomer(t *testing.T) {
	f := newFixture()
	if _, err := f.uc.Generate(context.Background(), "biz-1", "ghost"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestTrackClick(t *testing.T) {
	f := newFixture()
	link, err := f.uc.Generate(context.Background(), "biz-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := f.uc.TrackClick(context.Background(), link.ReferralCode); err != nil {
			t.Fatal(err)
		}
	}

	got, err := f.uc.Get(context.Background(), link.ReferralCode)
	if err != nil {
		t.Fatal(err)
	}
	if got.Clicks != 3 {
		t.Fatalf("expected 3 clicks, got %d", got.Clicks)
	}
	if got.LastClickedAt == nil || time.Since(*got.LastClickedAt) > time.Minute {
		t.Fatalf("expected a fresh LastClickedAt, got %v", got.LastClickedAt)
	}
}

func TestTrackClickUnknownCode(t *testing.T) {
	f := newFixture()
	if err := f.uc.TrackClick(context.Background(), "nope"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestTrackConversionDeduplicatesUsers(t *testing.T) {
	f := newFixture()
	link, err := f.uc.Generate(context.Background(), "biz-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}

	if err := f.uc.TrackConversion(context.Background(), link.ReferralCode, "friend-1"); err != nil {
		t.Fatal(err)
	}
	if err := f.uc.TrackConversion(context.Background(), link.ReferralCode, "friend-1"); err != nil {
		t.Fatal(err)
	}
	if err := f.uc.TrackConversion(context.Background(), link.ReferralCode, "friend-2"); err != nil {
		t.Fatal(err)
	}

	got, err := f.uc.Get(context.Background(), link.ReferralCode)
	if err != nil {
		t.Fatal(err)
	}
	if got.Conversions != 3 {
		t.Fatalf("every conversion event counts, got %d", got.Conversions)
	}
	if len(got.ConvertedUserIDs) != 2 {
		t.Fatalf("converted users must be unique, got %v", got.ConvertedUserIDs)
	}
}

func TestTrackConversionNotifiesReferrer(t *testing.T) {
	f := newFixture()
	link, err := f.uc.Generate(context.Background(), "biz-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}

	if err := f.uc.TrackConversion(context.Background(), link.ReferralCode, "friend-1"); err != nil {
		t.Fatal(err)
	}

	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected one conversion notice, got %d", len(f.notifier.sent))
	}
	msg := f.notifier.sent[0]
	if msg.Phone != "+919800000001" || msg.Category != "referral_conversion" {
		t.Fatalf("unexpected notice %+v", msg)
	}
}

func TestStatsRequiresBusinessID(t *testing.T) {
	f := newFixture()
	if _, err := f.uc.Stats(context.Background(), ""); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected INVALID, got %v", err)
	}
}
