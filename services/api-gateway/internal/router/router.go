// Package router wires the public HTTP surface of the gateway.
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/pkg/config"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/clients"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/drafts"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/handlers"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/idempotency"
	mw "github.com/kiaorakahi/marketplace/services/api-gateway/internal/middlewares"
)

func New(cfg config.App, c *clients.Clients) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), otelgin.Middleware("api-gateway"))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: true,
	}))

	timeout := cfg.UpstreamTimeout
	a := handlers.NewAuthHandler(c, timeout)
	uh := handlers.NewUserHandler(c, timeout)
	ch := handlers.NewCelebrityHandler(c, timeout)
	bh := handlers.NewBookingHandler(c, timeout)
	sh := handlers.NewSupportHandler(c, timeout)
	ah := handlers.NewAdminHandler(c, timeout)
	ph := handlers.NewPaymentHandler(c, cfg, idempotency.New(cfg.DraftTTL))
	dh := handlers.NewDraftHandler(c, cfg, drafts.New(cfg.DraftTTL, cfg.DraftResetDelay))
	up := handlers.NewUploadHandler(cfg)

	forms := mw.RateLimit(mw.NewIPLimiter(cfg.FormRatePerMin, cfg.FormBurst))
	logins := mw.RateLimit(mw.NewIPLimiter(cfg.FormRatePerMin*2, cfg.FormBurst*2))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/payments/return", ph.Return)
	r.Static("/uploads", cfg.UploadDir)

	api := r.Group("/api")
	{
		api.POST("/auth/register", logins, a.Register)
		api.POST("/auth/login", logins, a.Login)
		api.POST("/auth/refresh", a.Refresh)

		api.GET("/celebrities", ch.List)
		api.GET("/celebrities/:ref", ch.Get)
		api.GET("/settings", ah.Settings)

		api.POST("/support", forms, mw.OptionalAuth(), sh.Create)
		api.GET("/support", sh.Lookup)
	}

	secured := api.Group("")
	secured.Use(mw.JWTAuth())
	{
		secured.GET("/users/me", uh.GetMe)
		secured.PUT("/users/me", uh.UpdateMe)

		secured.POST("/create-payment-intent", ph.CreateIntent)
		secured.POST("/payments/confirm", ph.Confirm)
		secured.GET("/payments/status", ph.Status)

		secured.POST("/drafts", dh.Create)
		secured.GET("/drafts/:id", dh.Get)
		secured.PUT("/drafts/:id", dh.Update)
		secured.POST("/drafts/:id/next", dh.Next)
		secured.POST("/drafts/:id/back", dh.Back)
		secured.POST("/drafts/:id/confirm", dh.Confirm)
		secured.POST("/drafts/:id/dismiss-error", dh.DismissError)
		secured.DELETE("/drafts/:id", dh.Cancel)

		secured.GET("/orders", bh.MyOrders)
		secured.GET("/orders/:id", bh.MyOrder)
		secured.POST("/orders/:id/review", bh.Review)

		secured.POST("/upload", up.Upload)

		secured.POST("/celebrity-applications", forms, ah.SubmitApplication)
		secured.GET("/celebrity-applications", ah.MyApplications)
	}

	celeb := secured.Group("/celebrity")
	celeb.Use(mw.RequireRole(auth.RoleCelebrity))
	{
		celeb.GET("/profile", ch.MyProfile)
		celeb.PUT("/profile", ch.UpdateProfile)
		celeb.GET("/booking-requests", bh.Requests)
		celeb.PATCH("/booking-requests/:id", bh.Respond)
		celeb.POST("/booking-requests/:id/video", bh.Deliver)
		celeb.GET("/earnings", bh.Earnings)
	}

	admin := secured.Group("/admin")
	admin.Use(mw.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/stats", ah.Stats)

		admin.GET("/users", uh.List)
		admin.GET("/users/:id", uh.GetByID)
		admin.PATCH("/users/:id", uh.AdminUpdate)

		admin.GET("/bookings", bh.AdminList)
		admin.GET("/bookings/:id", bh.AdminGet)
		admin.PATCH("/bookings/:id", bh.AdminUpdate)

		admin.GET("/settings", ah.Settings)
		admin.PATCH("/settings", ah.UpdateSettings)

		admin.GET("/applications", ah.Applications)
		admin.PATCH("/applications/:id", ah.ReviewApplication)

		admin.GET("/celebrities", ch.AdminList)
		admin.POST("/celebrities", ch.Create)
		admin.PATCH("/celebrities/:id", ch.SetTier)

		admin.GET("/support", sh.AdminList)
		admin.POST("/support/:id/responses", sh.Respond)
		admin.PATCH("/support/:id", sh.Update)
	}
	return r
}
