package gamification

import (
	"encoding/json"
	"fmt"
	"math"
)

// 徽章条件类型，与数据库中 criteria.type 对应
const (
	CriterionLessonsCompleted = "lessons_completed"
	CriterionStreak           = "streak"
	CriterionXP               = "xp"
	CriterionSubjectLessons   = "subject_lessons"
	CriterionSubjectsStarted  = "subjects_started"
)

// Stats 评估徽章时的用户统计快照
type Stats struct {
	TotalLessonsCompleted int
	CurrentStreak         int
	TotalXP               int
	SubjectLessonCounts   map[string]int
	SubjectsStartedCount  int
}

// Criterion 徽章条件。只有本包内的类型可以实现
type Criterion interface {
	Type() string
	criterion()
}

type LessonsCompleted struct{ Value int }
type StreakAtLeast struct{ Value int }
type XPAtLeast struct{ Value int }
type SubjectsStarted struct{ Value int }

// SubjectLessons 某一科目完成课程数，Subject 为科目 slug
type SubjectLessons struct {
	Subject string
	Value   int
}

// UnknownCriterion 无法识别的条件类型，永远不满足
type UnknownCriterion struct{ Raw string }

func (LessonsCompleted) Type() string   { return CriterionLessonsCompleted }
func (StreakAtLeast) Type() string      { return CriterionStreak }
func (XPAtLeast) Type() string          { return CriterionXP }
func (SubjectLessons) Type() string     { return CriterionSubjectLessons }
func (SubjectsStarted) Type() string    { return CriterionSubjectsStarted }
func (u UnknownCriterion) Type() string { return u.Raw }

func (LessonsCompleted) criterion() {}
func (StreakAtLeast) criterion()    {}
func (XPAtLeast) criterion()        {}
func (SubjectLessons) criterion()   {}
func (SubjectsStarted) criterion()  {}
func (UnknownCriterion) criterion() {}

// MeetsCriteria 判断统计快照是否满足条件，从不 panic
func MeetsCriteria(c Criterion, stats Stats) bool {
	switch v := c.(type) {
	case LessonsCompleted:
		return stats.TotalLessonsCompleted >= v.Value
	case StreakAtLeast:
		return stats.CurrentStreak >= v.Value
	case XPAtLeast:
		return stats.TotalXP >= v.Value
	case SubjectLessons:
		if v.Subject == "" {
			return false
		}
		return stats.SubjectLessonCounts[v.Subject] >= v.Value
	case SubjectsStarted:
		return stats.SubjectsStartedCount >= v.Value
	default:
		return false
	}
}

type criteriaJSON struct {
	Type    string  `json:"type"`
	Value   float64 `json:"value"`
	Subject string  `json:"subject,omitempty"`
}

// ParseCriterion 解析数据库中的 criteria JSON
func ParseCriterion(raw []byte) (Criterion, error) {
	var cj criteriaJSON
	if err := json.Unmarshal(raw, &cj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCriteria, err)
	}
	// 统计值都是整数，n >= 2.5 等价于 n >= 3
	value := int(math.Ceil(cj.Value))
	switch cj.Type {
	case CriterionLessonsCompleted:
		return LessonsCompleted{Value: value}, nil
	case CriterionStreak:
		return StreakAtLeast{Value: value}, nil
	case CriterionXP:
		return XPAtLeast{Value: value}, nil
	case CriterionSubjectLessons:
		return SubjectLessons{Subject: cj.Subject, Value: value}, nil
	case CriterionSubjectsStarted:
		return SubjectsStarted{Value: value}, nil
	default:
		return UnknownCriterion{Raw: cj.Type}, nil
	}
}

// MarshalCriterion 将条件编码为存储格式
func MarshalCriterion(c Criterion) ([]byte, error) {
	cj := criteriaJSON{Type: c.Type()}
	switch v := c.(type) {
	case LessonsCompleted:
		cj.Value = float64(v.Value)
	case StreakAtLeast:
		cj.Value = float64(v.Value)
	case XPAtLeast:
		cj.Value = float64(v.Value)
	case SubjectLessons:
		cj.Value = float64(v.Value)
		cj.Subject = v.Subject
	case SubjectsStarted:
		cj.Value = float64(v.Value)
	}
	return json.Marshal(cj)
}

// BadgeRule 待评估的徽章
type BadgeRule struct {
	Slug      string
	Criterion Criterion
}

// NewlyUnlocked 返回满足条件但尚未解锁的徽章 slug，保持 rules 的顺序
func NewlyUnlocked(rules []BadgeRule, stats Stats, unlocked map[string]bool) []string {
	var out []string
	for _, r := range rules {
		if unlocked[r.Slug] {
			continue
		}
		if MeetsCriteria(r.Criterion, stats) {
			out = append(out, r.Slug)
		}
	}
	return out
}
