package service

import (
	"errors"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/logger"

	"gorm.io/gorm"
)

// SeedService populates reference data and the initial super admin. Seeding
// is idempotent: existing rows are matched by name and left alone, so it is
// safe to run at every startup.
type SeedService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSeedService(db *gorm.DB, log *logger.Logger) *SeedService {
	return &SeedService{db: db, log: log}
}

// Run seeds everything: realms, worlds, talent tiers, origins, spirit roots,
// talents, system config defaults, and the first super admin.
func (s *SeedService) Run(configs *SystemConfigService, adminUserName, adminPassword string) error {
	if err := s.SeedAdmin(adminUserName, adminPassword); err != nil {
		return err
	}
	if err := s.SeedRealms(); err != nil {
		return err
	}
	if err := s.SeedWorlds(); err != nil {
		return err
	}
	if err := s.SeedTalentTiers(); err != nil {
		return err
	}
	if err := s.SeedOrigins(); err != nil {
		return err
	}
	if err := s.SeedSpiritRoots(); err != nil {
		return err
	}
	if err := s.SeedTalents(); err != nil {
		return err
	}
	return configs.InitDefaults()
}

// SeedAdmin creates the initial super admin when no admin account exists.
func (s *SeedService) SeedAdmin(userName, password string) error {
	if userName == "" || password == "" {
		return nil
	}
	var count int64
	if err := s.db.Model(&models.AdminAccount{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	admin := &models.AdminAccount{
		UserName:            userName,
		Password:            password,
		Role:                models.RoleSuperAdmin,
		RedemptionCodeLimit: -1,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}
	s.log.Info("seeded initial super admin", "user_name", userName)
	return nil
}

// seedByName inserts row unless a row with the same name already exists.
func seedByName[T any](db *gorm.DB, name string, row *T) (bool, error) {
	var existing T
	err := db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := db.Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (s *SeedService) SeedRealms() error {
	realms := []models.Realm{
		{Name: "凡人", Title: "未入修行", Description: "尚未踏入修仙之道的凡俗生灵，寿命有限，无法感应灵气。", Order: 0},
		{Name: "炼气", Title: "问道童子", Description: "引气入体，洗涤凡躯。在凡间已是异人，可施展微末法术。", Order: 1},
		{Name: "筑基", Title: "入道之士", Description: "灵气液化，丹田筑基。正式脱凡，可御器飞行。", Order: 2},
		{Name: "金丹", Title: "真人", Description: "灵液结丹，法力自生。在修行界可开宗立派，为一派老祖。", Order: 3},
		{Name: "元婴", Title: "真君", Description: "丹碎婴生，神魂寄托。元婴不灭，真灵不死。", Order: 4},
		{Name: "化神", Title: "道君", Description: "神游太虚，感悟法则。神识即领域，意念可干涉现实。", Order: 5},
		{Name: "炼虚", Title: "尊者", Description: "身融虚空，掌握空间。咫尺天涯，可短暂撕裂空间。", Order: 6},
		{Name: "合体", Title: "大能", Description: "法则归体，身即是道。一举一动皆引动大道共鸣。", Order: 7},
		{Name: "渡劫", Title: "问天者", Description: "超脱世界，叩问天道。已是人间道之极致，引动天劫。", Order: 8},
	}
	created := 0
	for i := range realms {
		ok, err := seedByName(s.db, realms[i].Name, &realms[i])
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		s.log.Info("seeded realms", "created", created)
	}
	return nil
}

func (s *SeedService) SeedWorlds() error {
	var admin models.AdminAccount
	if err := s.db.Where("role = ?", models.RoleSuperAdmin).First(&admin).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	worlds := []models.World{
		{
			Name:        "朝天大陆",
			Description: "天道完整、灵气充沛的上善之地。万灵竞渡，一步登天，无论人、妖、精、怪皆有缘法踏上修行之路。仙凡之别泾渭分明，大道争锋，机缘背后往往是血与火的洗礼。",
			Era:         "朝天历元年",
			CreatorID:   admin.ID,
		},
	}
	created := 0
	for i := range worlds {
		ok, err := seedByName(s.db, worlds[i].Name, &worlds[i])
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		s.log.Info("seeded worlds", "created", created)
	}
	return nil
}

func (s *SeedService) SeedTalentTiers() error {
	tiers := []models.TalentTier{
		{Name: "废柴", Description: "资质平平，毫无出奇之处。", TotalPoints: 10, Rarity: 1, Color: "#808080"},
		{Name: "凡人", Description: "芸芸众生中的一员，不好不坏。", TotalPoints: 20, Rarity: 2, Color: "#FFFFFF"},
		{Name: "俊杰", Description: "百里挑一的人才，略有不凡。", TotalPoints: 30, Rarity: 3, Color: "#4169E1"},
		{Name: "天骄", Description: "千年难遇的奇才，注定耀眼。", TotalPoints: 40, Rarity: 4, Color: "#9932CC"},
		{Name: "妖孽", Description: "万古无一的怪物，逆天而行。", TotalPoints: 50, Rarity: 5, Color: "#FFD700"},
	}
	created := 0
	for i := range tiers {
		ok, err := seedByName(s.db, tiers[i].Name, &tiers[i])
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		s.log.Info("seeded talent tiers", "created", created)
	}
	return nil
}

func (s *SeedService) SeedOrigins() error {
	origins := []models.Origin{
		{Name: "山野遗孤", Description: "自幼在山野中长大，与猛兽为伴，磨练出坚韧的意志和过人的体魄。", TalentCost: 0, RootBoneModifier: 1, Rarity: 3},
		{Name: "书香门第", Description: "出身于官宦世家，饱读诗书，对天地至理有超乎常人的理解力。", TalentCost: 2, ComprehensionModifier: 2, Rarity: 3},
		{Name: "商贾之子", Description: "生于富贵之家，精通人情世故，处事圆滑，魅力非凡。", TalentCost: 2, CharmModifier: 2, Rarity: 3},
		{Name: "将门之后", Description: "名将的后代，血脉中流淌着勇武与煞气，心性坚定。", TalentCost: 3, TemperamentModifier: 2, RootBoneModifier: 1, Rarity: 3},
		{Name: "散修传人", Description: "师承一位游历风尘的强大散修，继承了他的部分衣钵和见识。", TalentCost: 4, ComprehensionModifier: 1, TemperamentModifier: 1, Rarity: 4},
		{Name: "重生者", Description: "保留着前世的记忆，虽然修为尽失，但对功法和未来的大事了如指掌。", TalentCost: 5, ComprehensionModifier: 2, FortuneModifier: 1, Rarity: 5},
		{Name: "仙人后裔", Description: "血脉中流淌着稀薄的仙人之血，天生灵性十足。", TalentCost: 6, SpiritualityModifier: 2, RootBoneModifier: 1, Rarity: 5},
		{Name: "渔家少年", Description: "常年在江河湖海中讨生活，水性极佳，体魄强健。", TalentCost: 1, RootBoneModifier: 2, Rarity: 2},
	}
	created := 0
	for i := range origins {
		ok, err := seedByName(s.db, origins[i].Name, &origins[i])
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		s.log.Info("seeded origins", "created", created)
	}
	return nil
}

func (s *SeedService) SeedSpiritRoots() error {
	roots := []models.SpiritRoot{
		{Name: "五行杂灵根", Description: "五行俱全却驳杂不纯，修炼速度平平。", BaseMultiplier: 1.0, TalentCost: 0},
		{Name: "风灵根", Description: "身负变异风属性灵根，身法灵动。", BaseMultiplier: 1.1, TalentCost: 3},
		{Name: "金灵根", Description: "金之天灵根，锐气逼人，剑修首选。", BaseMultiplier: 1.6, TalentCost: 10},
		{Name: "火灵根", Description: "火之天灵根，炼丹炼器皆有大用。", BaseMultiplier: 1.6, TalentCost: 10},
		{Name: "雷灵根", Description: "变异雷灵根，攻伐无双，渡劫亦有加成。", BaseMultiplier: 2.0, TalentCost: 15},
		{Name: "冰灵根", Description: "变异冰灵根，御敌封锁，冷冽无匹。", BaseMultiplier: 2.0, TalentCost: 15},
		{Name: "混沌灵根", Description: "传说中的混沌灵根，万法皆通，亘古罕见。", BaseMultiplier: 2.8, TalentCost: 25},
		{Name: "天妒之体", Description: "天道所妒的残缺之体，修行举步维艰，却能返还少量天赋点。", BaseMultiplier: 0.5, TalentCost: -5},
	}
	created := 0
	for i := range roots {
		ok, err := seedByName(s.db, roots[i].Name, &roots[i])
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		s.log.Info("seeded spirit roots", "created", created)
	}
	return nil
}

func (s *SeedService) SeedTalents() error {
	talents := []models.Talent{
		{Name: "天命主角", Description: "气运惊人，总是能在绝境中逢生，获得意想不到的机缘。", TalentCost: 15, Rarity: 5, MaxUses: 3,
			Effects: models.JSONMap{"气运": 8, "逢凶化吉": 0.1}},
		{Name: "剑道独尊", Description: "天生剑心通明，任何剑法一看便会，且威力倍增。", TalentCost: 12, Rarity: 5, MaxUses: 1,
			Effects: models.JSONMap{"剑法": 0.2, "根骨": 3}},
		{Name: "丹道圣手", Description: "对药理有超凡的领悟力，炼丹成功率与品质大幅提升。", TalentCost: 12, Rarity: 5, MaxUses: 1,
			Effects: models.JSONMap{"炼丹": 0.15, "悟性": 2}},
		{Name: "阵法大师", Description: "对阵法有极高的天赋，学习和布置阵法的效率大大提高。", TalentCost: 8, Rarity: 4, MaxUses: 1,
			Effects: models.JSONMap{"阵法": 0.12, "悟性": 2}},
		{Name: "多宝童子", Description: "出门历练时，更容易发现天材地宝。", TalentCost: 7, Rarity: 4, MaxUses: 5,
			Effects: models.JSONMap{"气运": 3, "寻宝天赋": 0.15}},
		{Name: "体修奇才", Description: "肉身天生强横，气血旺盛，适合修炼体修功法。", TalentCost: 5, Rarity: 3, MaxUses: 1,
			Effects: models.JSONMap{"根骨": 3, "体修天赋": 0.1}},
		{Name: "神识过人", Description: "天生神识强大，不易被心魔入侵。", TalentCost: 5, Rarity: 3, MaxUses: 1,
			Effects: models.JSONMap{"悟性": 3, "心魔抗性": 0.1}},
		{Name: "身法鬼魅", Description: "身法飘逸，战斗中闪避能力更强。", TalentCost: 4, Rarity: 3, MaxUses: 1,
			Effects: models.JSONMap{"灵性": 2, "闪避天赋": 0.08}},
		{Name: "农夫之子", Description: "出身凡人，心性坚韧，对灵植有额外的亲和力。", TalentCost: 2, Rarity: 2, MaxUses: 1,
			Effects: models.JSONMap{"心性": 1, "灵植亲和": 0.1}},
	}
	created := 0
	for i := range talents {
		ok, err := seedByName(s.db, talents[i].Name, &talents[i])
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		s.log.Info("seeded talents", "created", created)
	}
	return nil
}
