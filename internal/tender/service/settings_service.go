package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnsondatabase/tender-sub001/internal/tender/grid"
)

// SettingsKV is the namespaced key-value persistence behind per-user grid
// settings. Backed by redis in production; tests use an in-memory map.
type SettingsKV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

// RedisKV adapts a redis client to SettingsKV. Settings survive restarts
// and are shared across devices, so no TTL.
type RedisKV struct {
	rdb *redis.Client
}

func NewRedisKV(rdb *redis.Client) *RedisKV {
	return &RedisKV{rdb: rdb}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, key, value, 0).Err()
}

func (r *RedisKV) Del(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

// SettingsService persists the detail grid's column order / visibility /
// pin / width / alignment and sort descriptor per user+view, reconciling
// against the canonical column catalogue on every load.
type SettingsService struct {
	kv  SettingsKV
	log *zap.Logger
}

func NewSettingsService(kv SettingsKV, log *zap.Logger) *SettingsService {
	return &SettingsService{kv: kv, log: log}
}

// settingsKey namespaces by user identity + view name. The namespace shape
// must stay stable: it is what keeps settings per-user across devices.
func settingsKey(userID, view string) string {
	return fmt.Sprintf("tender:grid_settings:%s:%s", userID, view)
}

// Load returns the user's settings for a view. Missing or corrupt stored
// JSON falls back to canonical defaults, never an error to the caller.
func (s *SettingsService) Load(ctx context.Context, userID, view string) grid.Settings {
	raw, ok, err := s.kv.Get(ctx, settingsKey(userID, view))
	if err != nil {
		s.log.Warn("Settings load failed, using defaults",
			zap.String("user_id", userID), zap.String("view", view), zap.Error(err))
		return grid.DefaultSettings()
	}
	if !ok {
		return grid.DefaultSettings()
	}

	var st grid.Settings
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.log.Warn("Corrupt stored settings, using defaults",
			zap.String("user_id", userID), zap.String("view", view), zap.Error(err))
		return grid.DefaultSettings()
	}
	return grid.Reconcile(st, grid.Canonical())
}

// Save persists the settings blob for a user+view.
func (s *SettingsService) Save(ctx context.Context, userID, view string, st grid.Settings) error {
	st = grid.Reconcile(st, grid.Canonical())
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return s.kv.Set(ctx, settingsKey(userID, view), string(b))
}

// Reset drops the stored settings so the next load yields defaults.
func (s *SettingsService) Reset(ctx context.Context, userID, view string) error {
	return s.kv.Del(ctx, settingsKey(userID, view))
}
