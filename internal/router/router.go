package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/istun/mezunlar-backend/internal/handler"
	"github.com/istun/mezunlar-backend/internal/middleware"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/response"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Approval *handler.ApprovalHandler
	Role     *handler.RoleHandler
	WS       *handler.WSHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter may be nil, which disables rate limiting on the auth routes.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	authLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(
		response.RequestIDMiddleware(),
		middleware.RequestLogger(log),
		middleware.Metrics(),
		middleware.BrotliWithConfig(middleware.BrotliConfig{
			Quality:      middleware.DefaultBrotliConfig.Quality,
			SkipPrefixes: []string{"/uploads", "/ws", "/metrics", "/api/admin/system"},
		}),
	)

	// Uploaded proof documents. File names are random UUIDs, so they never change.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.PrivateCache(365 * 24 * time.Hour))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if authLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{authLimiter.Middleware(), h}
	}

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/public")
	{
		publicAPI.GET("/alumni", handlers.Approval.ListAlumni)
	}

	// ─── 1. Member Auth Group ──────────────────────────────────────────
	memberAuth := router.Group("/api/auth")
	memberAuth.Use(middleware.NoStore())
	{
		memberAuth.POST("/register", limited(handlers.Auth.Register)...)
		memberAuth.POST("/login", limited(handlers.Auth.MemberLogin)...)
		memberAuth.POST("/refresh", handlers.Auth.Refresh)
		memberAuth.POST("/logout", handlers.Auth.Logout)
		memberAuth.GET("/me", middleware.RequireMemberJWT(auth), handlers.Auth.Me)
	}

	// ─── 2. Admin Auth Group ───────────────────────────────────────────
	adminAuth := router.Group("/api/admin/auth")
	adminAuth.Use(middleware.NoStore())
	{
		adminAuth.POST("/login", limited(handlers.Auth.AdminLogin)...)
		adminAuth.POST("/refresh", handlers.Auth.Refresh)
		adminAuth.POST("/logout", handlers.Auth.Logout)
	}

	// Everything below requires an admin access token.
	requireAdmin := middleware.RequireAdminJWT(auth)

	adminReview := router.Group("/api/admin/auth")
	adminReview.Use(middleware.NoStore(), requireAdmin)
	{
		adminReview.GET("/me", handlers.Auth.Me)
		adminReview.GET("/pending-users",
			middleware.RequirePermission(model.PermissionUsersApprove),
			handlers.Approval.ListPending,
		)
		adminReview.POST("/approve-user/:id",
			middleware.RequirePermission(model.PermissionUsersApprove),
			handlers.Approval.ApproveUser,
		)
		adminReview.POST("/reject-user/:id",
			middleware.RequirePermission(model.PermissionUsersApprove),
			handlers.Approval.RejectUser,
		)
	}

	// ─── 3. Role Management ────────────────────────────────────────────
	management := router.Group("/api/admin/management")
	management.Use(middleware.NoStore(), requireAdmin)
	{
		management.GET("/list-admins",
			middleware.RequirePermission(model.PermissionAdminsRead),
			handlers.Role.ListAdmins,
		)
		management.POST("/set-role",
			middleware.RequirePermission(model.PermissionAdminsManage),
			handlers.Role.SetRole,
		)
		management.POST("/remove-role",
			middleware.RequirePermission(model.PermissionAdminsManage),
			handlers.Role.RemoveRole,
		)
	}

	// ─── 4. User Directory ─────────────────────────────────────────────
	router.GET("/api/users",
		middleware.NoStore(),
		requireAdmin,
		middleware.RequirePermission(model.PermissionUsersRead),
		handlers.Approval.ListUsers,
	)

	router.GET("/api/admin/system/metrics",
		requireAdmin,
		middleware.RequirePermission(model.PermissionAdminsRead),
		handlers.System.SystemMetricsSSE,
	)

	// ─── 5. WebSocket (token in query) ─────────────────────────────────
	wsGroup := router.Group("/ws/admin")
	wsGroup.Use(middleware.RequireAdminWSAuth(auth))
	{
		wsGroup.GET("/registrations",
			middleware.RequirePermission(model.PermissionUsersApprove),
			handlers.WS.RegistrationFeed,
		)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router
}
