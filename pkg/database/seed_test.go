package database_test

import (
	"codepath_backend/internal/gamification"
	"codepath_backend/internal/model"
	"codepath_backend/internal/testutil"
	"codepath_backend/pkg/database"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.SeededDB(t)
	require.NoError(t, database.Seed(db))

	var subjects, topics, lessons, badges int64
	db.Model(&model.Subject{}).Count(&subjects)
	db.Model(&model.Topic{}).Count(&topics)
	db.Model(&model.Lesson{}).Count(&lessons)
	db.Model(&model.Badge{}).Count(&badges)
	assert.EqualValues(t, 5, subjects)
	assert.EqualValues(t, 45, topics)
	assert.EqualValues(t, 45, lessons)
	assert.EqualValues(t, 12, badges)
}

func TestSeedBadgeCriteriaParse(t *testing.T) {
	db := testutil.SeededDB(t)

	var all []model.Badge
	require.NoError(t, db.Find(&all).Error)
	for _, b := range all {
		c, err := gamification.ParseCriterion(b.Criteria)
		require.NoError(t, err, b.Slug)
		_, unknown := c.(gamification.UnknownCriterion)
		assert.False(t, unknown, b.Slug)
	}
}

func TestSeedPrerequisitesStayInSubject(t *testing.T) {
	db := testutil.SeededDB(t)

	var topics []model.Topic
	require.NoError(t, db.Find(&topics).Error)
	byID := make(map[uint]model.Topic, len(topics))
	for _, tp := range topics {
		byID[tp.ID] = tp
	}
	for _, tp := range topics {
		if tp.Difficulty == gamification.Beginner {
			assert.Nil(t, tp.PrerequisiteID, tp.Slug)
			continue
		}
		require.NotNil(t, tp.PrerequisiteID, tp.Slug)
		pre := byID[*tp.PrerequisiteID]
		assert.Equal(t, tp.SubjectID, pre.SubjectID, tp.Slug)
		assert.Less(t, pre.Order, tp.Order, tp.Slug)
	}
}
