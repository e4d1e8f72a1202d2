package service

import (
	"codepath_backend/internal/config"
	"codepath_backend/internal/model"
	"codepath_backend/internal/repository"
	"codepath_backend/internal/util"
	"codepath_backend/pkg/logger"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 身份服务回调事件类型
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// 回调签名头
const (
	HeaderWebhookID        = "svix-id"
	HeaderWebhookTimestamp = "svix-timestamp"
	HeaderWebhookSignature = "svix-signature"
)

type UserSyncService struct {
	UserRepo *repository.UserRepository
	Cache    *repository.CacheRepository
	Config   config.WebhookConfig
	Now      func() time.Time
}

func NewUserSyncService(userRepo *repository.UserRepository, cache *repository.CacheRepository, cfg config.WebhookConfig) *UserSyncService {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 5 * time.Minute
	}
	return &UserSyncService{UserRepo: userRepo, Cache: cache, Config: cfg, Now: time.Now}
}

type identityEmail struct {
	EmailAddress string `json:"email_address"`
}

type identityUser struct {
	ID             string          `json:"id"`
	EmailAddresses []identityEmail `json:"email_addresses"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	ImageURL       string          `json:"image_url"`
}

type IdentityEvent struct {
	Type string       `json:"type"`
	Data identityUser `json:"data"`
}

// Verify 校验回调签名：HMAC-SHA256(id.timestamp.body)，签名头可包含多个 "v1,<base64>"
func (s *UserSyncService) Verify(header http.Header, body []byte) error {
	id := header.Get(HeaderWebhookID)
	ts := header.Get(HeaderWebhookTimestamp)
	sigs := header.Get(HeaderWebhookSignature)
	if id == "" || ts == "" || sigs == "" {
		return fmt.Errorf("%w: missing signature headers", util.ErrInvalidSignature)
	}
	if s.Config.Secret == "" {
		return fmt.Errorf("%w: webhook secret not configured", util.ErrInvalidSignature)
	}

	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", util.ErrInvalidSignature)
	}
	skew := s.Now().Sub(time.Unix(sec, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > s.Config.Tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", util.ErrInvalidSignature)
	}

	expected := SignWebhook(s.Config.Secret, id, ts, body)
	for _, candidate := range strings.Fields(sigs) {
		version, sig, ok := strings.Cut(candidate, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return util.ErrInvalidSignature
}

// SignWebhook 计算 v1 签名，secret 支持 "whsec_" 前缀的 base64 格式
func SignWebhook(secret, id, timestamp string, body []byte) string {
	key := []byte(secret)
	if raw, ok := strings.CutPrefix(secret, "whsec_"); ok {
		if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
			key = decoded
		}
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// HandleWebhook 校验并应用一次身份服务事件
func (s *UserSyncService) HandleWebhook(ctx context.Context, header http.Header, body []byte) error {
	if err := s.Verify(header, body); err != nil {
		return err
	}

	var evt IdentityEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}
	if evt.Data.ID == "" {
		return fmt.Errorf("%w: event has no user id", util.ErrInvalidInput)
	}

	switch evt.Type {
	case EventUserCreated, EventUserUpdated:
		user := profileOf(evt.Data)
		if err := s.UserRepo.UpsertProfile(ctx, user); err != nil {
			return err
		}
		if stored, err := s.UserRepo.FindByExternalID(ctx, evt.Data.ID); err == nil {
			s.trackLeaderboard(ctx, stored)
		}
		logger.Log.Info("User synced", zap.String("event", evt.Type), zap.String("externalID", evt.Data.ID))
	case EventUserDeleted:
		existing, err := s.UserRepo.FindByExternalID(ctx, evt.Data.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := s.UserRepo.DeleteByExternalID(ctx, evt.Data.ID); err != nil {
			return err
		}
		if s.Cache.Enabled() {
			if err := s.Cache.RemoveFromLeaderboard(ctx, existing.ID); err != nil {
				logger.Log.Warn("Failed to remove user from leaderboard", zap.Error(err))
			}
		}
		logger.Log.Info("User deleted", zap.String("externalID", evt.Data.ID))
	default:
		logger.Log.Debug("Ignoring identity event", zap.String("event", evt.Type))
	}
	return nil
}

func profileOf(d identityUser) *model.User {
	email := ""
	if len(d.EmailAddresses) > 0 {
		email = d.EmailAddresses[0].EmailAddress
	}
	return &model.User{
		ExternalID: d.ID,
		Email:      email,
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		ImageURL:   d.ImageURL,
		Level:      1,
	}
}

// EnsureUser 按令牌 subject 查找本地用户，不存在时用令牌中的资料创建
func (s *UserSyncService) EnsureUser(ctx context.Context, claims *util.Claims) (*model.User, error) {
	user, err := s.UserRepo.FindByExternalID(ctx, claims.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &model.User{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		FirstName:  claims.FirstName,
		LastName:   claims.LastName,
		ImageURL:   claims.ImageURL,
		Level:      1,
	}
	if err := s.UserRepo.UpsertProfile(ctx, user); err != nil {
		return nil, err
	}
	// 并发创建时 upsert 不会回填 ID，重新读取
	user, err = s.UserRepo.FindByExternalID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	s.trackLeaderboard(ctx, user)
	return user, nil
}

// trackLeaderboard 新用户加入排行榜，已在榜上的保持原分数
func (s *UserSyncService) trackLeaderboard(ctx context.Context, user *model.User) {
	if !s.Cache.Enabled() {
		return
	}
	if err := s.Cache.AddToLeaderboard(ctx, user.ID, user.XP); err != nil {
		logger.Log.Warn("Failed to add user to leaderboard", zap.Uint("userID", user.ID), zap.Error(err))
	}
}
