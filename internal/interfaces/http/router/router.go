package router

import (
	"html/template"

	"github.com/YouSangSon/tour-service/internal/application/usecase"
	"github.com/YouSangSon/tour-service/internal/config"
	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	httpHandler "github.com/YouSangSon/tour-service/internal/interfaces/http/handler"
	"github.com/YouSangSon/tour-service/internal/interfaces/http/middleware"
	"github.com/YouSangSon/tour-service/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WebhookPath는 서명 검증을 위해 원본 본문이 필요한 결제 webhook 경로입니다
const WebhookPath = "/api/v1/bookings/webhook-checkout"

// Deps는 라우터 의존성입니다
type Deps struct {
	Config   *config.Config
	Auth     *usecase.AuthUseCase
	Users    *usecase.UserUseCase
	Tours    *usecase.TourUseCase
	Reviews  *usecase.ReviewUseCase
	Bookings *usecase.BookingUseCase
	Health   *httpHandler.HealthHandler

	// RateLimiter가 nil이면 속도 제한을 적용하지 않습니다
	RateLimiter repository.RateLimiter
	Metrics     *metrics.Metrics

	// Templates가 nil이면 페이지 라우트를 등록하지 않고 에러도 JSON으로 렌더링합니다
	Templates *template.Template
}

// SetupRouter sets up all routes for the API server
func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	production := cfg.App.IsProduction()

	// Set Gin mode based on environment
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if len(cfg.Server.HTTP.TrustedProxies) > 0 {
		_ = router.SetTrustedProxies(cfg.Server.HTTP.TrustedProxies)
	}

	// Global Middlewares
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging())
	if cfg.Observability.Tracing.Enabled {
		router.Use(middleware.Tracing())
	}
	if cfg.Observability.Metrics.Enabled && deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	router.Use(middleware.ErrorHandler(middleware.ErrorHandlerConfig{
		Production: production,
		Pages:      deps.Templates != nil,
	}))
	router.Use(middleware.Recovery())
	router.Use(middleware.SecurityHeaders(production))
	router.Use(middleware.CORS(cfg.Server.HTTP.AllowedOrigins))
	router.Use(middleware.Timeout(cfg.Server.HTTP.RequestTimeout))
	router.Use(middleware.BodyLimit(cfg.Server.HTTP.MaxRequestSize, cfg.Storage.MaxUploadSize))
	router.Use(middleware.Sanitize(WebhookPath))

	router.NoRoute(middleware.NotFound())

	auth := middleware.NewAuth(deps.Auth, cfg.Auth.CookieName)
	limits := httpHandler.QueryLimits{DefaultLimit: cfg.Query.DefaultLimit, MaxLimit: cfg.Query.MaxLimit}

	// ============================================
	// Health & Metrics Endpoints (no rate limit)
	// ============================================
	if deps.Health != nil {
		router.GET("/health", deps.Health.Health)
		router.GET("/ready", deps.Health.Ready)
	}
	if cfg.Observability.Metrics.Enabled {
		router.GET(cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	if !cfg.Storage.Enabled && cfg.Storage.LocalDir != "" {
		router.Static("/img", cfg.Storage.LocalDir+"/img")
	}

	if deps.Templates != nil {
		router.SetHTMLTemplate(deps.Templates)
		registerPages(router, auth, httpHandler.NewViewHandler(deps.Tours, deps.Bookings, deps.Users))
	}

	// ============================================
	// API v1 Group with rate limiting
	// ============================================
	api := router.Group(middleware.APIPrefix)
	if cfg.RateLimit.Enabled && deps.RateLimiter != nil {
		api.Use(middleware.RateLimit(deps.RateLimiter, cfg.RateLimit.Limit, cfg.RateLimit.Window))
	}
	v1 := api.Group("/v1")

	registerUsers(v1, auth, deps, limits, cookieConfig(cfg))
	registerTours(v1, auth, deps, limits)
	registerReviews(v1, auth, deps, limits)
	registerBookings(v1, auth, deps, limits, cfg.App.BaseURL)

	return router
}

func cookieConfig(cfg *config.Config) httpHandler.CookieConfig {
	return httpHandler.CookieConfig{
		Name:      cfg.Auth.CookieName,
		ExpiresIn: cfg.Auth.CookieExpiresIn,
		Secure:    cfg.App.IsProduction(),
	}
}

func registerPages(router *gin.Engine, auth *middleware.Auth, views *httpHandler.ViewHandler) {
	router.GET("/", auth.LoggedIn(), views.Overview)
	router.GET("/tour/:slug", auth.LoggedIn(), views.Tour)
	router.GET("/login", auth.LoggedIn(), views.Login)
	router.GET("/me", auth.Protect(), views.Account)
	router.GET("/my-tours", auth.Protect(), views.MyTours)
	router.POST("/submit-user-data", auth.Protect(), views.SubmitUserData)
}

func registerUsers(v1 *gin.RouterGroup, auth *middleware.Auth, deps Deps, limits httpHandler.QueryLimits, cookie httpHandler.CookieConfig) {
	authHandler := httpHandler.NewAuthHandler(deps.Auth, cookie)
	userHandler := httpHandler.NewUserHandler(deps.Users)
	userResource := httpHandler.NewResourceHandler[*entity.User](deps.Users, limits.UserQuery())

	users := v1.Group("/users")
	{
		users.POST("/signup", authHandler.Signup)
		users.POST("/login", authHandler.Login)
		users.GET("/logout", authHandler.Logout)
		users.POST("/forgotPassword", authHandler.ForgotPassword)
		users.PATCH("/resetPassword/:token", authHandler.ResetPassword)
	}

	protected := users.Group("", auth.Protect())
	{
		protected.PATCH("/updatePassword", authHandler.UpdatePassword)
		protected.GET("/me", userHandler.GetMe, userResource.GetOne)
		protected.PATCH("/updateMe", userHandler.UpdateMe)
		protected.DELETE("/deleteMe", userHandler.DeleteMe)
	}

	admin := protected.Group("", middleware.RestrictTo(entity.RoleAdmin))
	{
		admin.GET("", userResource.GetAll)
		admin.POST("", userHandler.CreateUser)
		admin.GET("/:id", userResource.GetOne)
		admin.PATCH("/:id", userResource.UpdateOne)
		admin.DELETE("/:id", userResource.DeleteOne)
	}
}

func registerTours(v1 *gin.RouterGroup, auth *middleware.Auth, deps Deps, limits httpHandler.QueryLimits) {
	tourHandler := httpHandler.NewTourHandler(deps.Tours)
	tourResource := httpHandler.NewResourceHandler[*entity.Tour](deps.Tours, limits.TourQuery(),
		httpHandler.WithExpand[*entity.Tour]("reviews"),
	)
	reviewResource := newReviewResource(deps, limits)
	editors := middleware.RestrictTo(entity.RoleAdmin, entity.RoleLeadGuide)

	tours := v1.Group("/tours")
	{
		tours.GET("/top-5-cheap", tourHandler.AliasTopTours, tourResource.GetAll)
		tours.GET("/tour-stats", tourHandler.Stats)
		tours.GET("/monthly-plan/:year", auth.Protect(),
			middleware.RestrictTo(entity.RoleAdmin, entity.RoleLeadGuide, entity.RoleGuide),
			tourHandler.MonthlyPlan)
		tours.GET("/tours-within/:distance/center/:latlng/unit/:unit", tourHandler.Within)
		tours.GET("/distances/:latlng/unit/:unit", tourHandler.Distances)

		tours.GET("", tourResource.GetAll)
		tours.POST("", auth.Protect(), editors, tourResource.CreateOne)
		tours.GET("/:id", tourResource.GetOne)
		tours.PATCH("/:id", auth.Protect(), editors, tourHandler.UpdateTour)
		tours.DELETE("/:id", auth.Protect(), editors, tourResource.DeleteOne)

		// 중첩 리뷰 라우트
		tours.GET("/:id/reviews", auth.Protect(), httpHandler.NestedTour, reviewResource.GetAll)
		tours.POST("/:id/reviews", auth.Protect(), middleware.RestrictTo(entity.RoleUser),
			httpHandler.NestedTour, reviewResource.CreateOne)
	}
}

func newReviewResource(deps Deps, limits httpHandler.QueryLimits) *httpHandler.ResourceHandler[*entity.Review] {
	return httpHandler.NewResourceHandler[*entity.Review](deps.Reviews, limits.ReviewQuery(),
		httpHandler.WithScope[*entity.Review](httpHandler.ReviewScope),
		httpHandler.WithBeforeCreate[*entity.Review](httpHandler.SetReviewRefs),
	)
}

func registerReviews(v1 *gin.RouterGroup, auth *middleware.Auth, deps Deps, limits httpHandler.QueryLimits) {
	reviewResource := newReviewResource(deps, limits)
	authors := middleware.RestrictTo(entity.RoleUser, entity.RoleAdmin)

	reviews := v1.Group("/reviews", auth.Protect())
	{
		reviews.GET("", reviewResource.GetAll)
		reviews.POST("", middleware.RestrictTo(entity.RoleUser), reviewResource.CreateOne)
		reviews.GET("/:id", reviewResource.GetOne)
		reviews.PATCH("/:id", authors, reviewResource.UpdateOne)
		reviews.DELETE("/:id", authors, reviewResource.DeleteOne)
	}
}

func registerBookings(v1 *gin.RouterGroup, auth *middleware.Auth, deps Deps, limits httpHandler.QueryLimits, baseURL string) {
	bookingHandler := httpHandler.NewBookingHandler(deps.Bookings, baseURL)
	bookingResource := httpHandler.NewResourceHandler[*entity.Booking](deps.Bookings, limits.BookingQuery())

	bookings := v1.Group("/bookings")
	bookings.POST("/webhook-checkout", bookingHandler.Webhook)

	protected := bookings.Group("", auth.Protect())
	protected.GET("/checkout-session/:"+httpHandler.TourIDParam, bookingHandler.CheckoutSession)

	staff := protected.Group("", middleware.RestrictTo(entity.RoleAdmin, entity.RoleLeadGuide))
	{
		staff.GET("", bookingResource.GetAll)
		staff.POST("", bookingResource.CreateOne)
		staff.GET("/:id", bookingResource.GetOne)
		staff.PATCH("/:id", bookingResource.UpdateOne)
		staff.DELETE("/:id", bookingResource.DeleteOne)
	}
}
