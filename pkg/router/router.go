package router

import (
	"github.com/dikoweii/XianTu/internal/api"
	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/apperrors"
	"github.com/dikoweii/XianTu/pkg/config"
	"github.com/dikoweii/XianTu/pkg/di"
	"github.com/dikoweii/XianTu/pkg/logger"
	"github.com/dikoweii/XianTu/pkg/middleware"
	"github.com/dikoweii/XianTu/pkg/validator"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router binds the handler set to a gin engine.
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Config    *config.Config
}

// New builds the engine with the ambient middleware chain: request logging,
// error rendering, panic recovery, token-bucket rate limiting, CORS and
// optional OpenAPI request validation.
func New(container *di.Container, cfg *config.Config) *Router {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.SetTrustedProxies(cfg.Security.TrustedProxies)

	engine.Use(logger.Middleware(container.Logger))
	engine.Use(apperrors.Recovery(container.Logger))
	engine.Use(apperrors.ErrorHandler(container.Logger))
	engine.Use(corsMiddleware())

	limiterOpts := middleware.DefaultRateLimiterOptions()
	limiterOpts.Limit = rate.Limit(cfg.Security.RateLimit)
	limiterOpts.Burst = cfg.Security.RateLimitBurst
	limiter := middleware.NewRateLimiter(container.Logger, limiterOpts)
	engine.Use(limiter.Middleware())

	if cfg.OpenAPISchemaPath != "" {
		if v, err := validator.NewOpenAPIValidator(cfg.OpenAPISchemaPath); err != nil {
			container.Logger.Warn("openapi schema not loaded, request validation disabled", "error", err.Error())
		} else {
			engine.Use(v.Middleware())
		}
	}

	return &Router{Engine: engine, Container: container, Config: cfg}
}

// SetupRoutes registers the full /api/v1 surface.
func (r *Router) SetupRoutes() {
	c := r.Container

	authHandler := api.NewAuthHandler(c.Accounts, c.Turnstile, c.Mail, c.IPRateLimits)
	characterHandler := api.NewCharacterHandler(c.Characters, c.GameStates)
	gameStateHandler := api.NewGameStateHandler(c.GameStates)
	rulesHandler := api.NewRulesHandler(c.Rules)
	redemptionHandler := api.NewRedemptionHandler(c.Redemption)
	adminHandler := api.NewAdminHandler(c.Accounts, c.Characters, c.Rules, c.SystemConfigs)
	healthHandler := api.NewHealthHandler(c.DB)

	jwtAuth := middleware.JWTAuth(c.JWTService, c.Logger)

	v1 := r.Engine.Group("/api/v1")

	// Public surface.
	v1.GET("/health", healthHandler.Health)
	v1.GET("/worlds", rulesHandler.ListWorlds)
	v1.GET("/talent-tiers", rulesHandler.ListTalentTiers)
	v1.GET("/talent-tiers/:id", rulesHandler.GetTalentTier)
	v1.GET("/realms", rulesHandler.ListRealms)
	v1.GET("/characters/creation_data", rulesHandler.CreationData)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/token", authHandler.Token)
		auth.POST("/send-email-code", authHandler.SendEmailCode)
		auth.POST("/verify-email", authHandler.VerifyEmail)
		auth.GET("/me", jwtAuth, middleware.RequirePlayer(), authHandler.Me)
	}

	// Player surface.
	player := v1.Group("/")
	player.Use(jwtAuth, middleware.RequirePlayer())
	{
		characters := player.Group("/characters")
		{
			characters.POST("", characterHandler.Create)
			characters.GET("/my", characterHandler.ListMine)
			characters.GET("/:id", characterHandler.Get)
			characters.DELETE("/:id", characterHandler.Delete)
			characters.POST("/:id/activate", characterHandler.Activate)

			characters.GET("/:id/game-state", gameStateHandler.Get)
			characters.PATCH("/:id/game-state", gameStateHandler.Patch)
			characters.POST("/:id/sync", gameStateHandler.Sync)
			characters.GET("/:id/sync-status", gameStateHandler.Status)
			characters.POST("/sync-all", gameStateHandler.SyncAll)
		}
		player.POST("/redemption/redeem", redemptionHandler.Redeem)
	}

	// Admin surface.
	v1.POST("/admin/auth/token", authHandler.AdminToken)

	admin := v1.Group("/admin")
	admin.Use(jwtAuth, middleware.RequireAdmin())
	{
		admin.GET("/me", authHandler.AdminMe)

		admin.GET("/players", adminHandler.ListPlayers)
		admin.GET("/players/:id", adminHandler.GetPlayer)
		admin.POST("/players/:id/ban", adminHandler.BanPlayer)

		admin.POST("/redemption-codes", redemptionHandler.Create)
		admin.GET("/redemption-codes", redemptionHandler.List)
		admin.DELETE("/redemption-codes/:id", redemptionHandler.Delete)

		admin.GET("/system-config", adminHandler.GetConfig)
		admin.PUT("/system-config", adminHandler.UpdateConfig)

		// Reference data.
		admin.POST("/worlds", adminHandler.SaveWorld)
		admin.PUT("/worlds/:id", adminHandler.SaveWorld)
		admin.DELETE("/worlds/:id", adminHandler.DeleteReference(func() any { return &models.World{} }))
		admin.POST("/talent-tiers", adminHandler.SaveTalentTier)
		admin.PUT("/talent-tiers/:id", adminHandler.SaveTalentTier)
		admin.DELETE("/talent-tiers/:id", adminHandler.DeleteReference(func() any { return &models.TalentTier{} }))
		admin.POST("/origins", adminHandler.SaveOrigin)
		admin.PUT("/origins/:id", adminHandler.SaveOrigin)
		admin.DELETE("/origins/:id", adminHandler.DeleteReference(func() any { return &models.Origin{} }))
		admin.POST("/spirit-roots", adminHandler.SaveSpiritRoot)
		admin.PUT("/spirit-roots/:id", adminHandler.SaveSpiritRoot)
		admin.DELETE("/spirit-roots/:id", adminHandler.DeleteReference(func() any { return &models.SpiritRoot{} }))
		admin.POST("/talents", adminHandler.SaveTalent)
		admin.PUT("/talents/:id", adminHandler.SaveTalent)
		admin.DELETE("/talents/:id", adminHandler.DeleteReference(func() any { return &models.Talent{} }))
		admin.POST("/realms", adminHandler.SaveRealm)
		admin.PUT("/realms/:id", adminHandler.SaveRealm)
		admin.DELETE("/realms/:id", adminHandler.DeleteReference(func() any { return &models.Realm{} }))
	}

	// Super-admin surface.
	superAdmin := v1.Group("/admin")
	superAdmin.Use(jwtAuth, middleware.RequireAdmin(models.RoleSuperAdmin))
	{
		superAdmin.POST("/accounts", adminHandler.CreateAdmin)
		superAdmin.GET("/accounts", adminHandler.ListAdmins)
		superAdmin.PUT("/accounts/:id", adminHandler.UpdateAdmin)
		superAdmin.DELETE("/accounts/:id", adminHandler.DeleteAdmin)

		superAdmin.PUT("/players/:id", adminHandler.UpdatePlayer)
		superAdmin.DELETE("/players/:id", adminHandler.DeletePlayer)
		superAdmin.POST("/characters", adminHandler.CreateCharacterFor)
	}
}

// corsMiddleware allows cross-origin browser clients.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Authorization, Origin, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
