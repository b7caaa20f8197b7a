package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/pkg/logger"
	"p2pex.com/pkg/xerr"
)

const (
	keySelectedCity = "selectedCity"
	keyProfilePfx   = "profile_"

	// 手机号至少 10 位才算已验证
	minVerifiedMobile = 10
)

// Store 会话持久化：选中的城市、按账户保存的个人资料
type Store struct {
	kv          domain.KVStore
	defaultCity string
}

func NewStore(kv domain.KVStore, defaultCity string) *Store {
	return &Store{kv: kv, defaultCity: defaultCity}
}

// SelectedCity 没选过返回默认城市；读失败也返回默认值，只打日志
func (s *Store) SelectedCity(ctx context.Context) string {
	v, err := s.kv.Get(ctx, keySelectedCity)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn(ctx, "read selected city failed", zap.Error(err))
		}
		return s.defaultCity
	}
	if v == "" {
		return s.defaultCity
	}
	return v
}

func (s *Store) SetSelectedCity(ctx context.Context, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return xerr.NewField(xerr.RequestParamsError, "city", "city is required")
	}
	if err := s.kv.Set(ctx, keySelectedCity, city); err != nil {
		return xerr.Wrap(err, xerr.ServerCommonError, "save selected city")
	}
	return nil
}

// Load 没有保存过时返回零值 Profile，不是错误
func (s *Store) Load(ctx context.Context, account string) (domain.Profile, error) {
	account = normalize(account)
	if account == "" {
		return domain.Profile{}, xerr.NewField(xerr.RequestParamsError, "account", "account is required")
	}
	raw, err := s.kv.Get(ctx, profileKey(account))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Profile{}, nil
	}
	if err != nil {
		return domain.Profile{}, xerr.Wrap(err, xerr.ServerCommonError, "load profile")
	}
	var p domain.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// 脏数据当作没填过
		logger.Warn(ctx, "corrupt profile record", zap.String("account", account), zap.Error(err))
		return domain.Profile{}, nil
	}
	return p, nil
}

// Save 去首尾空白，名字必填；Verified 由手机号长度决定，忽略传入值
func (s *Store) Save(ctx context.Context, account string, p domain.Profile) (domain.Profile, error) {
	account = normalize(account)
	if account == "" {
		return domain.Profile{}, xerr.NewField(xerr.RequestParamsError, "account", "account is required")
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Mobile = strings.TrimSpace(p.Mobile)
	if p.Name == "" {
		return domain.Profile{}, xerr.NewField(xerr.InvalidProfile, "name", "Name is required")
	}
	p.Verified = len(p.Mobile) >= minVerifiedMobile

	b, err := json.Marshal(p)
	if err != nil {
		return domain.Profile{}, xerr.Wrap(err, xerr.ServerCommonError, "encode profile")
	}
	if err := s.kv.Set(ctx, profileKey(account), string(b)); err != nil {
		return domain.Profile{}, xerr.Wrap(err, xerr.ServerCommonError, "save profile")
	}
	return p, nil
}

// DisplayName 发布广告时用的名字，没填过返回空串
func (s *Store) DisplayName(ctx context.Context, account string) string {
	if normalize(account) == "" {
		return ""
	}
	p, err := s.Load(ctx, account)
	if err != nil {
		return ""
	}
	return p.Name
}

func profileKey(account string) string { return keyProfilePfx + account }

// 地址大小写不同视为同一账户
func normalize(account string) string {
	return strings.ToLower(strings.TrimSpace(account))
}
