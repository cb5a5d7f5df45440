package game

// UnitVariant enumerates the unit kinds described in spec.md §3.
type UnitVariant string

const (
	UnitWorker   UnitVariant = "worker"
	UnitSoldier  UnitVariant = "soldier"
	UnitArcher   UnitVariant = "archer"
	UnitHealer   UnitVariant = "healer"
	UnitCatapult UnitVariant = "catapult"
)

// BuildingVariant enumerates the building kinds described in spec.md §3.
type BuildingVariant string

const (
	BuildingBase          BuildingVariant = "base"
	BuildingBarracks      BuildingVariant = "barracks"
	BuildingFarm          BuildingVariant = "farm"
	BuildingTower         BuildingVariant = "tower"
	BuildingBlacksmith    BuildingVariant = "blacksmith"
	BuildingSiegeWorkshop BuildingVariant = "siegeWorkshop"
	BuildingWall          BuildingVariant = "wall"
)

// Cost is the gold/wood/supply reservation a production action debits.
type Cost struct {
	Gold   int
	Wood   int
	Supply int
}

// UnitSpec is the baseline, server-authoritative definition of a unit
// variant. The Anti-Cheat Monitor treats these as the "expected" values a
// client-reported unit must not exceed by more than its tolerance factor
// (spec.md §4.E).
type UnitSpec struct {
	Variant        UnitVariant
	HP             int
	Damage         int
	Armor          int
	Range          float64 // attack range in pixels; 0 for non-combat (worker)
	CooldownTicks  int
	MoveSpeed      float64 // pixels per tick
	CollisionSize  float64
	Cost           Cost
	ProduceTicks   int // time spent in a building's production queue
	IsRanged       bool
	SplashRadius   float64
	HealAmount     int
	HealRange      float64
	CarryCapacity  int // worker-only
	GatherPerTrip  int
	ProducedBy     []BuildingVariant
}

// UnitSpecs is the single source of truth for unit balance.
var UnitSpecs = map[UnitVariant]UnitSpec{
	UnitWorker: {
		Variant:       UnitWorker,
		HP:            50,
		Damage:        2,
		Range:         20,
		CooldownTicks: 60,
		MoveSpeed:     1.6,
		CollisionSize: 16,
		Cost:          Cost{Gold: 50, Wood: 0, Supply: 1},
		ProduceTicks:  300,
		CarryCapacity: 20,
		GatherPerTrip: 20,
		ProducedBy:    []BuildingVariant{BuildingBase},
	},
	UnitSoldier: {
		Variant:       UnitSoldier,
		HP:            80,
		Damage:        10,
		Range:         30,
		CooldownTicks: 60,
		MoveSpeed:     1.8,
		CollisionSize: 18,
		Cost:          Cost{Gold: 60, Wood: 20, Supply: 2},
		ProduceTicks:  450,
		ProducedBy:    []BuildingVariant{BuildingBarracks},
	},
	UnitArcher: {
		Variant:       UnitArcher,
		HP:            55,
		Damage:        8,
		Range:         120,
		CooldownTicks: 70,
		MoveSpeed:     1.7,
		CollisionSize: 16,
		Cost:          Cost{Gold: 50, Wood: 40, Supply: 2},
		ProduceTicks:  400,
		IsRanged:      true,
		ProducedBy:    []BuildingVariant{BuildingBarracks},
	},
	UnitHealer: {
		Variant:       UnitHealer,
		HP:            50,
		Damage:        0,
		Range:         0,
		CooldownTicks: 50,
		MoveSpeed:     1.6,
		CollisionSize: 16,
		Cost:          Cost{Gold: 40, Wood: 50, Supply: 2},
		ProduceTicks:  350,
		HealAmount:    5,
		HealRange:     100,
		ProducedBy:    []BuildingVariant{BuildingBarracks},
	},
	UnitCatapult: {
		Variant:       UnitCatapult,
		HP:            100,
		Damage:        35,
		Armor:         1,
		Range:         180,
		CooldownTicks: 120,
		MoveSpeed:     1.0,
		CollisionSize: 24,
		Cost:          Cost{Gold: 150, Wood: 100, Supply: 4},
		ProduceTicks:  900,
		IsRanged:      true,
		SplashRadius:  60,
		ProducedBy:    []BuildingVariant{BuildingSiegeWorkshop},
	},
}

// BuildingSpec is the baseline definition of a building variant.
type BuildingSpec struct {
	Variant         BuildingVariant
	HP              int
	Footprint       float64 // square side, pixels
	BuildSeconds    float64
	Cost            Cost
	SuppliesGranted int            // additional maxSupply while complete and alive
	CanProduce      []UnitVariant
	AttacksAuto     bool // tower-style auto-fire
	BaseDamage      int
}

// BuildingSpecs is the single source of truth for building balance.
var BuildingSpecs = map[BuildingVariant]BuildingSpec{
	BuildingBase: {
		Variant:         BuildingBase,
		HP:              1000,
		Footprint:       120,
		BuildSeconds:    120,
		Cost:            Cost{Gold: 400, Wood: 200},
		SuppliesGranted: 10,
		CanProduce:      []UnitVariant{UnitWorker},
	},
	BuildingBarracks: {
		Variant:      BuildingBarracks,
		HP:           500,
		Footprint:    80,
		BuildSeconds: 30,
		Cost:         Cost{Gold: 150, Wood: 50},
		CanProduce:   []UnitVariant{UnitSoldier, UnitArcher, UnitHealer},
	},
	BuildingFarm: {
		Variant:         BuildingFarm,
		HP:              300,
		Footprint:       60,
		BuildSeconds:    20,
		Cost:            Cost{Gold: 80, Wood: 20},
		SuppliesGranted: 8,
	},
	BuildingTower: {
		Variant:      BuildingTower,
		HP:           400,
		Footprint:    50,
		BuildSeconds: 25,
		Cost:         Cost{Gold: 120, Wood: 30},
		AttacksAuto:  true,
		BaseDamage:   15,
	},
	BuildingBlacksmith: {
		Variant:      BuildingBlacksmith,
		HP:           350,
		Footprint:    70,
		BuildSeconds: 35,
		Cost:         Cost{Gold: 150, Wood: 80},
	},
	BuildingSiegeWorkshop: {
		Variant:      BuildingSiegeWorkshop,
		HP:           400,
		Footprint:    80,
		BuildSeconds: 40,
		Cost:         Cost{Gold: 200, Wood: 100},
		CanProduce:   []UnitVariant{UnitCatapult},
	},
	BuildingWall: {
		Variant:      BuildingWall,
		HP:           200,
		Footprint:    40,
		BuildSeconds: 10,
		Cost:         Cost{Gold: 20, Wood: 10},
	},
}

// UpgradeCaps are the maximum levels for each upgrade track (spec.md §4.D.7).
var UpgradeCaps = map[string]int{
	"attack":  3,
	"defense": 3,
	"range":   2,
}

// TowerRange returns a tower's auto-fire range for a given range upgrade
// level, per spec.md §4.C.2: "range 150 + 10*range_upgrade".
func TowerRange(rangeUpgrade int) float64 {
	return 150 + 10*float64(rangeUpgrade)
}

// TowerCooldownTicks is the fixed cooldown between tower shots.
const TowerCooldownTicks = 60

// AutoAcquireRange returns the radius a combat unit scans for hostiles to
// auto-engage, per spec.md §4.C.3: "1.5*attackRange + 10*range_upgrade".
func AutoAcquireRange(attackRange float64, rangeUpgrade int) float64 {
	return 1.5*attackRange + 10*float64(rangeUpgrade)
}

// HealAutoRange mirrors AutoAcquireRange's scan distance for healers.
func HealAutoRange(healRange float64) float64 {
	return healRange
}
