package gamification

// ExtrapolationBand 超出阈值表之后每一级所需的经验值
const ExtrapolationBand = 10000

var defaultThresholds = []int{
	0, 100, 250, 500, 1000, 1750, 2750, 4000, 5500, 7500, 10000, 13000,
	16500, 20500, 25000, 30000, 36000, 43000, 51000, 60000,
}

// LevelInfo 某个经验值对应的等级信息
type LevelInfo struct {
	Level                int `json:"level"`
	CurrentXPInLevel     int `json:"currentXp"`
	XPNeededForNextLevel int `json:"nextXp"`
	TotalXP              int `json:"totalXp"`
}

// LevelTable 升序的等级阈值表，下标 i 为达到 i+1 级所需的最低经验
type LevelTable struct {
	thresholds []int
}

// DefaultLevelTable 返回内置的 20 级阈值表
func DefaultLevelTable() LevelTable {
	t, _ := NewLevelTable(defaultThresholds)
	return t
}

// NewLevelTable 校验并复制阈值，第一项必须为 0 且严格递增
func NewLevelTable(thresholds []int) (LevelTable, error) {
	if len(thresholds) == 0 || thresholds[0] != 0 {
		return LevelTable{}, ErrInvalidThresholds
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return LevelTable{}, ErrInvalidThresholds
		}
	}
	cp := make([]int, len(thresholds))
	copy(cp, thresholds)
	return LevelTable{thresholds: cp}, nil
}

// Thresholds 返回阈值副本
func (t LevelTable) Thresholds() []int {
	cp := make([]int, len(t.thresholds))
	copy(cp, t.thresholds)
	return cp
}

// LevelOf 将累计经验映射为等级。负数经验按 0 处理
func (t LevelTable) LevelOf(xp int) LevelInfo {
	if len(t.thresholds) == 0 {
		t = DefaultLevelTable()
	}
	if xp < 0 {
		xp = 0
	}

	level := 1
	for i := 1; i < len(t.thresholds); i++ {
		if xp < t.thresholds[i] {
			break
		}
		level = i + 1
	}

	last := len(t.thresholds)
	if level < last {
		floor := t.thresholds[level-1]
		return LevelInfo{
			Level:                level,
			CurrentXPInLevel:     xp - floor,
			XPNeededForNextLevel: t.thresholds[level] - floor,
			TotalXP:              xp,
		}
	}

	// 超出阈值表后，每 ExtrapolationBand 经验再升一级
	over := xp - t.thresholds[last-1]
	return LevelInfo{
		Level:                last + over/ExtrapolationBand,
		CurrentXPInLevel:     over % ExtrapolationBand,
		XPNeededForNextLevel: ExtrapolationBand,
		TotalXP:              xp,
	}
}
