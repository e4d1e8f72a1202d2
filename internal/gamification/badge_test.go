package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetsCriteria(t *testing.T) {
	stats := Stats{
		TotalLessonsCompleted: 12,
		CurrentStreak:         7,
		TotalXP:               1000,
		SubjectLessonCounts:   map[string]int{"python": 10, "sql": 2},
		SubjectsStartedCount:  3,
	}

	cases := []struct {
		name string
		c    Criterion
		want bool
	}{
		{"lessons met", LessonsCompleted{Value: 10}, true},
		{"lessons not met", LessonsCompleted{Value: 50}, false},
		{"streak met", StreakAtLeast{Value: 7}, true},
		{"streak not met", StreakAtLeast{Value: 14}, false},
		{"xp boundary", XPAtLeast{Value: 1000}, true},
		{"xp above", XPAtLeast{Value: 1001}, false},
		{"subject met", SubjectLessons{Subject: "python", Value: 10}, true},
		{"subject not met", SubjectLessons{Subject: "sql", Value: 10}, false},
		{"subject absent from stats", SubjectLessons{Subject: "git", Value: 1}, false},
		{"subject missing", SubjectLessons{Value: 0}, false},
		{"subjects started", SubjectsStarted{Value: 3}, true},
		{"subjects started not met", SubjectsStarted{Value: 5}, false},
		{"unknown", UnknownCriterion{Raw: "friends"}, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MeetsCriteria(tc.c, stats))
		})
	}
}

func TestMeetsCriteria_XPThreshold(t *testing.T) {
	c := XPAtLeast{Value: 1000}
	assert.True(t, MeetsCriteria(c, Stats{TotalXP: 1000}))
	assert.False(t, MeetsCriteria(c, Stats{TotalXP: 999}))
}

func TestMeetsCriteria_SubjectLessons(t *testing.T) {
	c, err := ParseCriterion([]byte(`{"type":"subject_lessons","value":10,"subject":"python"}`))
	require.NoError(t, err)

	assert.True(t, MeetsCriteria(c, Stats{SubjectLessonCounts: map[string]int{"python": 10}}))
	assert.False(t, MeetsCriteria(c, Stats{SubjectLessonCounts: map[string]int{"python": 9}}))
	assert.False(t, MeetsCriteria(c, Stats{}))
}

func TestParseCriterion(t *testing.T) {
	c, err := ParseCriterion([]byte(`{"type":"lessons_completed","value":1}`))
	require.NoError(t, err)
	assert.Equal(t, LessonsCompleted{Value: 1}, c)

	c, err = ParseCriterion([]byte(`{"type":"streak","value":2.5}`))
	require.NoError(t, err)
	assert.Equal(t, StreakAtLeast{Value: 3}, c)

	c, err = ParseCriterion([]byte(`{"type":"leaderboard_top","value":10}`))
	require.NoError(t, err)
	assert.Equal(t, UnknownCriterion{Raw: "leaderboard_top"}, c)
	assert.False(t, MeetsCriteria(c, Stats{TotalXP: 1 << 20}))

	_, err = ParseCriterion([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedCriteria)
}

func TestMarshalCriterion(t *testing.T) {
	raw, err := MarshalCriterion(SubjectLessons{Subject: "javascript", Value: 10})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"subject_lessons","value":10,"subject":"javascript"}`, string(raw))

	back, err := ParseCriterion(raw)
	require.NoError(t, err)
	assert.Equal(t, SubjectLessons{Subject: "javascript", Value: 10}, back)
}

func TestNewlyUnlocked(t *testing.T) {
	rules := []BadgeRule{
		{Slug: "first-lesson", Criterion: LessonsCompleted{Value: 1}},
		{Slug: "10-lessons", Criterion: LessonsCompleted{Value: 10}},
		{Slug: "streak-7", Criterion: StreakAtLeast{Value: 7}},
		{Slug: "xp-1000", Criterion: XPAtLeast{Value: 1000}},
	}
	stats := Stats{TotalLessonsCompleted: 10, CurrentStreak: 2, TotalXP: 1200}

	got := NewlyUnlocked(rules, stats, map[string]bool{"first-lesson": true})
	assert.Equal(t, []string{"10-lessons", "xp-1000"}, got)

	assert.Empty(t, NewlyUnlocked(rules, stats, map[string]bool{
		"first-lesson": true, "10-lessons": true, "xp-1000": true,
	}))
}
