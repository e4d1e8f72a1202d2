package testutil

import (
	"codepath_backend/internal/gamification"
	"codepath_backend/internal/model"
	"codepath_backend/pkg/database"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// DB 每个测试一个独立的内存 SQLite 库，已完成迁移
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_busy_timeout=5000", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// SeededDB 带默认目录和徽章的测试库
func SeededDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db := DB(tb)
	if err := database.Seed(db); err != nil {
		tb.Fatalf("failed to seed: %v", err)
	}
	return db
}

func CreateUser(tb testing.TB, db *gorm.DB, externalID string, mutate ...func(*model.User)) *model.User {
	tb.Helper()
	u := &model.User{
		ExternalID: externalID,
		Email:      externalID + "@example.com",
		FirstName:  "Test",
		LastName:   strings.ToUpper(externalID),
		Level:      1,
	}
	for _, m := range mutate {
		m(u)
	}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("failed to create user: %v", err)
	}
	return u
}

// Catalog 最小目录：一个科目、一个主题、若干课程
type Catalog struct {
	Subject model.Subject
	Topic   model.Topic
	Lessons []model.Lesson
}

func CreateCatalog(tb testing.TB, db *gorm.DB, slug string, lessonXP ...int) *Catalog {
	tb.Helper()
	c := &Catalog{
		Subject: model.Subject{Slug: slug, Name: strings.ToUpper(slug), Order: 1},
	}
	if err := db.Create(&c.Subject).Error; err != nil {
		tb.Fatalf("failed to create subject: %v", err)
	}
	c.Topic = model.Topic{SubjectID: c.Subject.ID, Slug: slug + "-basics", Title: "Basics", Order: 1, Difficulty: gamification.Beginner}
	if err := db.Create(&c.Topic).Error; err != nil {
		tb.Fatalf("failed to create topic: %v", err)
	}
	for i, xp := range lessonXP {
		l := model.Lesson{
			TopicID:    c.Topic.ID,
			Slug:       fmt.Sprintf("lesson-%d", i+1),
			Title:      fmt.Sprintf("Lesson %d", i+1),
			Order:      i + 1,
			Difficulty: gamification.Beginner,
			XPReward:   xp,
		}
		if err := db.Create(&l).Error; err != nil {
			tb.Fatalf("failed to create lesson: %v", err)
		}
		c.Lessons = append(c.Lessons, l)
	}
	return c
}

func CreateBadge(tb testing.TB, db *gorm.DB, slug string, c gamification.Criterion, xpBonus int) *model.Badge {
	tb.Helper()
	raw, err := gamification.MarshalCriterion(c)
	if err != nil {
		tb.Fatalf("failed to marshal criterion: %v", err)
	}
	b := &model.Badge{Slug: slug, Name: slug, Criteria: datatypes.JSON(raw), XPBonus: xpBonus}
	if err := db.Create(b).Error; err != nil {
		tb.Fatalf("failed to create badge: %v", err)
	}
	return b
}

// Clock 可控时钟
type Clock struct {
	now time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{now: t} }

func (c *Clock) Now() time.Time { return c.now }

func (c *Clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func (c *Clock) Set(t time.Time) { c.now = t }

// Redis 进程内 Redis 服务与连接它的客户端，测试结束时关闭
func Redis(tb testing.TB) (*miniredis.Miniredis, *redis.Client) {
	tb.Helper()
	mr := miniredis.RunT(tb)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tb.Cleanup(func() { _ = client.Close() })
	return mr, client
}
