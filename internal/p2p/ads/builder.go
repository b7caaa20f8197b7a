package ads

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/pkg/logger"
	"p2pex.com/pkg/metrics"
	"p2pex.com/pkg/xerr"
)

// 新发布广告的默认值
const (
	DefaultListerName   = "You"
	DefaultListerRating = 5.0
	DefaultLocation     = "Your Location"
)

// DefaultPaymentMethods 表单没收集支付方式时使用
var DefaultPaymentMethods = []string{"UPI Transfer", "Bank Transfer"}

// AdForm 发布广告的原始表单，数值字段都是用户输入的字符串
type AdForm struct {
	Direction      string   `json:"direction"`
	Token          string   `json:"token"`
	UnitPrice      string   `json:"unit_price"`
	Available      string   `json:"available"`
	MinLimit       string   `json:"min_limit"`
	MaxLimit       string   `json:"max_limit"`
	PaymentMethods []string `json:"payment_methods"`
	ListerName     string   `json:"lister_name"`
	Location       string   `json:"location"`
}

// Publisher 广告入目录后的通知（推送、远端存储）
type Publisher interface {
	Publish(ctx context.Context, l *domain.Listing) error
}

type PublisherFunc func(ctx context.Context, l *domain.Listing) error

func (f PublisherFunc) Publish(ctx context.Context, l *domain.Listing) error { return f(ctx, l) }

type Option func(*Builder)

// WithIDFunc 替换 ID 生成器；必须保证进程内唯一
func WithIDFunc(fn func() string) Option {
	return func(b *Builder) { b.newID = fn }
}

func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func WithPublisher(p ...Publisher) Option {
	return func(b *Builder) { b.pubs = append(b.pubs, p...) }
}

// Builder 把表单变成 Listing 并追加到目录
type Builder struct {
	dir   *Directory
	newID func() string
	now   func() time.Time
	pubs  []Publisher
}

func NewBuilder(dir *Directory, opts ...Option) *Builder {
	b := &Builder{
		dir:   dir,
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build 校验失败返回 InvalidListingFields（带字段名），目录不变
func (b *Builder) Build(ctx context.Context, form AdForm) (*domain.Listing, error) {
	l, err := b.listingFrom(form)
	if err != nil {
		return nil, err
	}
	if err := b.dir.Append(l); err != nil {
		// 生成器撞 ID，是程序错误
		logger.Error(ctx, "append listing failed", zap.String("id", l.ID), zap.Error(err))
		return nil, xerr.Wrap(err, xerr.ServerCommonError, "append listing")
	}
	metrics.AdsCreatedTotal.WithLabelValues(l.Direction.String(), l.Token.String()).Inc()
	logger.Info(ctx, "listing created",
		zap.String("id", l.ID),
		zap.String("direction", l.Direction.String()),
		zap.String("token", l.Token.String()),
		zap.String("price", l.UnitPrice.String()),
	)

	// 通知失败不影响发布结果
	for _, p := range b.pubs {
		if err := p.Publish(ctx, l); err != nil {
			logger.Warn(ctx, "publish listing failed", zap.String("id", l.ID), zap.Error(err))
		}
	}
	return l, nil
}

func (b *Builder) listingFrom(form AdForm) (*domain.Listing, error) {
	dir, err := domain.ParseDirection(form.Direction)
	if err != nil {
		return nil, xerr.NewField(xerr.InvalidListingFields, "direction", "direction must be BUY or SELL")
	}
	token, err := domain.ParseToken(form.Token)
	if err != nil {
		return nil, xerr.NewField(xerr.InvalidListingFields, "token", "unsupported token")
	}
	price, err := positive("unit_price", form.UnitPrice)
	if err != nil {
		return nil, err
	}
	available, err := positive("available", form.Available)
	if err != nil {
		return nil, err
	}
	minLimit, err := positive("min_limit", form.MinLimit)
	if err != nil {
		return nil, err
	}
	maxLimit, err := positive("max_limit", form.MaxLimit)
	if err != nil {
		return nil, err
	}
	if minLimit.GreaterThan(maxLimit) {
		return nil, xerr.NewField(xerr.InvalidListingFields, "min_limit", "min limit must not exceed max limit")
	}

	methods := cleanMethods(form.PaymentMethods)
	if len(methods) == 0 {
		methods = append([]string(nil), DefaultPaymentMethods...)
	}
	name := strings.TrimSpace(form.ListerName)
	if name == "" {
		name = DefaultListerName
	}
	location := strings.TrimSpace(form.Location)
	if location == "" {
		location = DefaultLocation
	}

	return &domain.Listing{
		ID:               b.newID(),
		Direction:        dir,
		Token:            token,
		UnitPrice:        price,
		Available:        available,
		Limit:            domain.Limit{Min: minLimit, Max: maxLimit},
		PaymentMethods:   methods,
		ListerName:       name,
		ListerRating:     DefaultListerRating,
		ListerTradeCount: 0,
		ListerOnline:     true,
		Location:         location,
		CreatedAt:        b.now(),
	}, nil
}

func positive(field, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !v.IsPositive() {
		return decimal.Zero, xerr.NewField(xerr.InvalidListingFields, field, field+" must be a positive number")
	}
	return v, nil
}

// 去空白、去重，保持顺序
func cleanMethods(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, m := range in {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
