package gamification

// Difficulty 主题/课程难度
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Valid 是否为已知难度
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Score 难度分值：beginner=1, intermediate=2, advanced=3，未知按 1
func (d Difficulty) Score() int {
	switch d {
	case Intermediate:
		return 2
	case Advanced:
		return 3
	default:
		return 1
	}
}

// DifficultyXP 按难度给出的默认课程经验
func DifficultyXP(d Difficulty) int {
	switch d {
	case Intermediate:
		return 25
	case Advanced:
		return 50
	default:
		return 10
	}
}

// LessonXP 课程自带奖励优先，否则按难度计算
func LessonXP(xpReward int, d Difficulty) int {
	if xpReward > 0 {
		return xpReward
	}
	return DifficultyXP(d)
}
