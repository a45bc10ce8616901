package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/SimalChaudhari/rebook-aI-backend/api/handler"
)

type Handlers struct {
	Webhook   *apiHandler.WebhookHandler
	Customer  *apiHandler.CustomerHandler
	Dashboard *apiHandler.DashboardHandler
	Review    *apiHandler.ReviewHandler
	Referral  *apiHandler.ReferralHandler
	Business  *apiHandler.BusinessHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Ingestion
	r.GET("/api/webhook/customer", handlers.Webhook.VerifySubscription)
	r.POST("/api/webhook/customer", handlers.Webhook.HandleCustomerEvent)

	// Customers
	r.GET("/api/customers", handlers.Customer.List)
	r.GET("/api/customers/{businessId}/{userId}", handlers.Customer.Get)
	r.PATCH("/api/customers/{businessId}/{userId}/status", handlers.Customer.UpdateStatus)
	r.GET("/api/customers/{businessId}/{userId}/analytics", handlers.Customer.Analytics)
	r.DELETE("/api/customers/{businessId}/{userId}", handlers.Customer.Delete)
	r.POST("/api/customers/{businessId}/{userId}/add-visit", handlers.Customer.AddVisit)
	r.POST("/api/customers/{businessId}/{userId}/add-rating", handlers.Customer.AddRating)
	r.POST("/api/customers/{businessId}/{userId}/add-payment", handlers.Customer.AddPayment)

	// Dashboard
	r.GET("/api/dashboard/metrics", handlers.Dashboard.Metrics)

	// Reviews
	r.POST("/api/reviews/request", handlers.Review.Request)
	r.POST("/api/reviews/submit", handlers.Review.Submit)

	// Referrals
	r.POST("/api/referrals/{businessId}/{userId}/generate", handlers.Referral.Generate)
	r.POST("/api/referrals/track/{referralCode}/click", handlers.Referral.TrackClick)
	r.POST("/api/referrals/track/{referralCode}/conversion", handlers.Referral.TrackConversion)
	r.GET("/api/referrals/stats/{businessId}", handlers.Referral.Stats)
	r.DELETE("/api/referrals/{referralCode}", handlers.Referral.Delete)
	r.GET("/refer/{referralCode}", handlers.Referral.Landing)

	// Businesses
	r.POST("/api/business/create", handlers.Business.Create)
	r.GET("/api/business/all", handlers.Business.List)
	r.GET("/api/business/{businessId}", handlers.Business.Get)
	r.DELETE("/api/business/{businessId}", handlers.Business.Delete)

	return r
}
