package gamification

import "fmt"

// RecentLimit 计算难度趋势时使用的最近完成记录数
const RecentLimit = 10

// Topic 推荐所需的主题信息，调用方按科目顺序、主题顺序排好
type Topic struct {
	ID             uint
	SubjectID      uint
	SubjectName    string
	SubjectSlug    string
	Title          string
	Emoji          string
	Difficulty     Difficulty
	PrerequisiteID *uint
}

// Recommendation 推荐结果
type Recommendation struct {
	TopicID     uint       `json:"topicId"`
	TopicTitle  string     `json:"topicTitle"`
	TopicEmoji  string     `json:"topicEmoji"`
	SubjectName string     `json:"subjectName"`
	SubjectSlug string     `json:"subjectSlug"`
	Difficulty  Difficulty `json:"difficulty"`
	Reason      string     `json:"reason"`
}

const ReasonPrerequisites = "Prerequisites completed"

func reasonNext(subject string) string {
	return fmt.Sprintf("Next in %s", subject)
}

func reasonSkill(d Difficulty) string {
	return fmt.Sprintf("Matches your skill level (%s)", d)
}

// TargetDifficulty 最近完成课程的平均难度映射为推荐难度，无记录时为 beginner
func TargetDifficulty(recent []Difficulty) Difficulty {
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	avg := 1.0
	if len(recent) > 0 {
		sum := 0
		for _, d := range recent {
			sum += d.Score()
		}
		avg = float64(sum) / float64(len(recent))
	}
	switch {
	case avg >= 2.5:
		return Advanced
	case avg >= 1.5:
		return Intermediate
	default:
		return Beginner
	}
}

// Recommend 三阶段贪心构造推荐列表：
// 每个科目的下一个未完成主题、前置已完成的主题、与近期难度匹配的主题。
// 结果按构造顺序截断到 limit，不做重新排序
func Recommend(topics []Topic, completed map[uint]bool, recent []Difficulty, limit int) []Recommendation {
	if limit <= 0 {
		return []Recommendation{}
	}

	out := make([]Recommendation, 0, limit)
	picked := make(map[uint]bool)
	add := func(t Topic, reason string) {
		picked[t.ID] = true
		out = append(out, Recommendation{
			TopicID:     t.ID,
			TopicTitle:  t.Title,
			TopicEmoji:  t.Emoji,
			SubjectName: t.SubjectName,
			SubjectSlug: t.SubjectSlug,
			Difficulty:  t.Difficulty,
			Reason:      reason,
		})
	}

	// 1. 每个科目中第一个未完成的主题，科目按目录中首次出现的顺序
	var subjectOrder []uint
	groups := make(map[uint][]Topic)
	for _, t := range topics {
		if _, ok := groups[t.SubjectID]; !ok {
			subjectOrder = append(subjectOrder, t.SubjectID)
		}
		groups[t.SubjectID] = append(groups[t.SubjectID], t)
	}
	for _, sid := range subjectOrder {
		for _, t := range groups[sid] {
			if completed[t.ID] {
				continue
			}
			if !picked[t.ID] {
				add(t, reasonNext(t.SubjectName))
			}
			break
		}
	}

	// 2. 前置主题已完成但自身未完成
	for _, t := range topics {
		if completed[t.ID] || picked[t.ID] || t.PrerequisiteID == nil {
			continue
		}
		if completed[*t.PrerequisiteID] {
			add(t, ReasonPrerequisites)
		}
	}

	// 3. 与近期难度匹配，候选达到 2*limit 即停止
	target := TargetDifficulty(recent)
	for _, t := range topics {
		if len(out) >= limit*2 {
			break
		}
		if completed[t.ID] || picked[t.ID] {
			continue
		}
		if t.Difficulty == target {
			add(t, reasonSkill(target))
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
