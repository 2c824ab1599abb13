package service

import (
	"testing"
	"time"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/jwt"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv bundles every service against one in-memory database.
type testEnv struct {
	db         *gorm.DB
	configs    *SystemConfigService
	accounts   *AccountService
	rules      *RulesService
	characters *CharacterService
	gameStates *GameStateService
	redemption *RedemptionService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// Every pooled connection to :memory: is a distinct empty database, so
	// pin the pool to one connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.PlayerAccount{},
		&models.AdminAccount{},
		&models.World{},
		&models.TalentTier{},
		&models.Origin{},
		&models.SpiritRoot{},
		&models.Talent{},
		&models.Realm{},
		&models.CharacterBase{},
		&models.CharacterGameState{},
		&models.RedemptionCode{},
		&models.SystemConfig{},
		&models.IPRateLimitRecord{},
		&models.EmailVerificationCode{},
	))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	jwtService := jwt.NewService("test-secret", time.Hour)
	configs := NewSystemConfigService(db)
	accounts := NewAccountService(db, jwtService)
	rules := NewRulesService(db, nil)
	characters := NewCharacterService(db, accounts, rules, nil, nil)
	gameStates := NewGameStateService(db, characters, nil, nil)
	redemption := NewRedemptionService(db, accounts)
	return &testEnv{
		db:         db,
		configs:    configs,
		accounts:   accounts,
		rules:      rules,
		characters: characters,
		gameStates: gameStates,
		redemption: redemption,
	}
}

// seedCreationRules inserts the reference rows the creation tests build
// against: one world, a 60-point tier, an origin costing 5, a spirit root
// costing 10, and talents costing 8 and 3.
func (e *testEnv) seedCreationRules(t *testing.T) (world models.World, tier models.TalentTier, origin models.Origin, root models.SpiritRoot, talents []models.Talent) {
	t.Helper()

	world = models.World{Name: "朝天大陆", Era: "朝天历元年"}
	require.NoError(t, e.db.Create(&world).Error)

	tier = models.TalentTier{Name: "妖孽", TotalPoints: 60, Rarity: 5, Color: "#FFD700"}
	require.NoError(t, e.db.Create(&tier).Error)

	origin = models.Origin{Name: "散修传人", TalentCost: 5, ComprehensionModifier: 1}
	require.NoError(t, e.db.Create(&origin).Error)

	root = models.SpiritRoot{Name: "金灵根", BaseMultiplier: 1.6, TalentCost: 10}
	require.NoError(t, e.db.Create(&root).Error)

	talents = []models.Talent{
		{Name: "体修奇才", TalentCost: 8, Rarity: 3},
		{Name: "农夫之子", TalentCost: 3, Rarity: 2},
	}
	for i := range talents {
		require.NoError(t, e.db.Create(&talents[i]).Error)
	}
	return
}

func (e *testEnv) createPlayer(t *testing.T, userName string) *models.PlayerAccount {
	t.Helper()
	player, err := e.accounts.RegisterPlayer(userName, "secret123")
	require.NoError(t, err)
	return player
}

// baseRequest is a valid creation request that spends 30 attribute points
// plus the 5-point origin and 10-point spirit root, total 45 of 60.
func baseRequest(world models.World, tier models.TalentTier, origin models.Origin, root models.SpiritRoot) *models.CreateCharacterRequest {
	return &models.CreateCharacterRequest{
		CharacterName: "云澈",
		WorldID:       world.ID,
		TalentTierID:  tier.ID,
		RootBone:      5,
		Spirituality:  5,
		Comprehension: 5,
		Fortune:       5,
		Charm:         5,
		Temperament:   5,
		OriginID:      &origin.ID,
		SpiritRootID:  &root.ID,
	}
}
