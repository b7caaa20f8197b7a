package city

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/pkg/ratelimit"
)

type fakeSource struct {
	calls atomic.Int32
	err   error
	delay time.Duration
	list  []domain.CityEntry
}

func (f *fakeSource) Cities(ctx context.Context) ([]domain.CityEntry, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func TestMatch(t *testing.T) {
	list := StaticCities()
	tests := []struct {
		name string
		term string
		want []string
	}{
		{"子串", "mum", []string{"Mumbai", "Navi Mumbai"}},
		{"大写", "DELHI", []string{"Delhi"}},
		{"无匹配", "zzz", []string{}},
		{"特殊字符", "& kup", []string{"Sangli-Miraj & Kupwad"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(list, tt.term)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, Result{Cities: got}.Names())
		})
	}

	assert.Len(t, Match(list, ""), len(list), "空串匹配全部")
	assert.Len(t, Match(list, "   "), len(list))
}

func TestLookup_StaticIsPrimary(t *testing.T) {
	l, err := NewLookup(nil, Config{})
	require.NoError(t, err)
	defer l.Close()

	res := l.Search(context.Background(), "mum")
	assert.Equal(t, domain.SourcePrimary, res.Source)
	assert.Contains(t, res.Names(), "Mumbai")

	res = l.Search(context.Background(), "zzz")
	assert.Equal(t, domain.SourcePrimary, res.Source)
	assert.Empty(t, res.Cities)
	assert.NotNil(t, res.Cities)
}

func TestLookup_RemoteOrderPreserved(t *testing.T) {
	src := &fakeSource{list: []domain.CityEntry{
		{Name: "Pune", TraderCount: 30},
		{Name: "Mumbai", TraderCount: 20},
		{Name: "Navi Mumbai", TraderCount: 5},
	}}
	l, err := NewLookup(src, Config{})
	require.NoError(t, err)

	res := l.Search(context.Background(), "")
	assert.Equal(t, domain.SourcePrimary, res.Source)
	assert.Equal(t, []string{"Pune", "Mumbai", "Navi Mumbai"}, res.Names())

	res = l.Search(context.Background(), "MUM")
	assert.Equal(t, []string{"Mumbai", "Navi Mumbai"}, res.Names())
}

func TestLookup_FallbackOnFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	l, err := NewLookup(src, Config{})
	require.NoError(t, err)

	res := l.Search(context.Background(), "mum")
	assert.Equal(t, domain.SourceFallback, res.Source)
	assert.Equal(t, []string{"Mumbai"}, res.Names())

	res = l.Search(context.Background(), "")
	assert.Len(t, res.Cities, 8)

	res = l.Search(context.Background(), "zzz")
	assert.Equal(t, domain.SourceFallback, res.Source)
	assert.Empty(t, res.Cities)
}

func TestLookup_FallbackOnTimeout(t *testing.T) {
	src := &fakeSource{delay: time.Second, list: StaticCities()}
	l, err := NewLookup(src, Config{FetchTimeout: 20 * time.Millisecond})
	require.NoError(t, err)

	res := l.Search(context.Background(), "pune")
	assert.Equal(t, domain.SourceFallback, res.Source)
	assert.Equal(t, []string{"Pune"}, res.Names())
}

func TestLookup_BreakerStopsCallingSource(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	l, err := NewLookup(src, Config{Breaker: ratelimit.Rule{TripConsecutiveFailures: 2, Timeout: time.Minute}})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		res := l.Search(context.Background(), "")
		assert.Equal(t, domain.SourceFallback, res.Source)
	}
	assert.Equal(t, int32(2), src.calls.Load(), "熔断后不再打远端")
	assert.Equal(t, gobreaker.StateOpen, l.cb.State(breakerName))
}

func TestLookup_CacheHit(t *testing.T) {
	src := &fakeSource{list: []domain.CityEntry{{Name: "Mumbai"}}}
	l, err := NewLookup(src, Config{CacheTTL: time.Minute})
	require.NoError(t, err)
	defer l.Close()

	for i := 0; i < 3; i++ {
		res := l.Search(context.Background(), "mum")
		assert.Equal(t, domain.SourcePrimary, res.Source)
	}
	assert.Equal(t, int32(1), src.calls.Load())

	l.Invalidate()
	l.Search(context.Background(), "")
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestLookup_ConcurrentSearch(t *testing.T) {
	src := &fakeSource{list: StaticCities(), delay: 10 * time.Millisecond}
	l, err := NewLookup(src, Config{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := l.Search(context.Background(), "pune")
			assert.Equal(t, domain.SourcePrimary, res.Source)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, src.calls.Load(), int32(16))
}

// 发起远端调用的请求先断开，合并进来的其他请求仍拿到主列表
func TestLookup_JoinedCallerSurvivesLeaderCancel(t *testing.T) {
	src := &fakeSource{delay: 150 * time.Millisecond, list: []domain.CityEntry{{Name: "Pune"}, {Name: "Surat"}}}
	l, err := NewLookup(src, Config{FetchTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(l.Close)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := make(chan Result, 1)
	go func() { leader <- l.Search(leaderCtx, "") }()

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	joined := make(chan Result, 1)
	go func() { joined <- l.Search(context.Background(), "") }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case res := <-leader:
		assert.Equal(t, domain.SourceFallback, res.Source)
	case <-time.After(time.Second):
		t.Fatal("leader search did not return after cancel")
	}
	select {
	case res := <-joined:
		assert.Equal(t, domain.SourcePrimary, res.Source)
		assert.Equal(t, []string{"Pune", "Surat"}, res.Names())
	case <-time.After(2 * time.Second):
		t.Fatal("joined search did not return")
	}
	assert.Equal(t, int32(1), src.calls.Load(), "只调用一次远端")
}
