package di

import (
	"github.com/dikoweii/XianTu/internal/service"
	"github.com/dikoweii/XianTu/pkg/cache"
	"github.com/dikoweii/XianTu/pkg/config"
	"github.com/dikoweii/XianTu/pkg/jwt"
	"github.com/dikoweii/XianTu/pkg/logger"
	"github.com/dikoweii/XianTu/pkg/observability"
	"github.com/dikoweii/XianTu/pkg/secrets"

	"gorm.io/gorm"
)

// Container wires every service with its dependencies. Handlers and the
// router take what they need from here instead of constructing services
// themselves.
type Container struct {
	DB      *gorm.DB
	Logger  *logger.Logger
	Cache   *cache.Client
	Secrets secrets.Manager
	Metrics *observability.Metrics

	JWTService    *jwt.Service
	SystemConfigs *service.SystemConfigService
	Accounts      *service.AccountService
	Rules         *service.RulesService
	Characters    *service.CharacterService
	GameStates    *service.GameStateService
	Redemption    *service.RedemptionService
	Turnstile     *service.TurnstileService
	Mail          *service.MailService
	IPRateLimits  *service.IPRateLimitService
	Seeder        *service.SeedService
}

// New builds the container from process config plus the already-open
// database handle. jwtSecret is resolved by the caller (vault or env) so
// the container never decides where secrets come from.
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger, sm secrets.Manager, jwtSecret string, metrics *observability.Metrics) *Container {
	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	jwtService := jwt.NewService(jwtSecret, cfg.JWT.Expiry)

	systemConfigs := service.NewSystemConfigService(db)
	accounts := service.NewAccountService(db, jwtService)
	rules := service.NewRulesService(db, cacheClient)
	characters := service.NewCharacterService(db, accounts, rules, nil, metrics)
	gameStates := service.NewGameStateService(db, characters, nil, metrics)
	redemption := service.NewRedemptionService(db, accounts)
	turnstile := service.NewTurnstileService(systemConfigs, sm)
	mail := service.NewMailService(db, systemConfigs, sm, nil)
	ipRateLimits := service.NewIPRateLimitService(db, systemConfigs, nil)
	seeder := service.NewSeedService(db, log)

	return &Container{
		DB:      db,
		Logger:  log,
		Cache:   cacheClient,
		Secrets: sm,
		Metrics: metrics,

		JWTService:    jwtService,
		SystemConfigs: systemConfigs,
		Accounts:      accounts,
		Rules:         rules,
		Characters:    characters,
		GameStates:    gameStates,
		Redemption:    redemption,
		Turnstile:     turnstile,
		Mail:          mail,
		IPRateLimits:  ipRateLimits,
		Seeder:        seeder,
	}
}
