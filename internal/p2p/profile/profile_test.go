package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/internal/p2p/repo/memory"
	"p2pex.com/pkg/xerr"
)

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, error) { return "", errors.New("redis down") }
func (brokenKV) Set(context.Context, string, string) error   { return errors.New("redis down") }
func (brokenKV) Del(context.Context, string) error           { return errors.New("redis down") }

func TestSelectedCity(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.NewKV(), "Mumbai")

	assert.Equal(t, "Mumbai", s.SelectedCity(ctx), "没选过用默认值")

	require.NoError(t, s.SetSelectedCity(ctx, "  Pune "))
	assert.Equal(t, "Pune", s.SelectedCity(ctx))

	err := s.SetSelectedCity(ctx, "  ")
	assert.Equal(t, xerr.RequestParamsError, xerr.CodeOf(err))
	assert.Equal(t, "Pune", s.SelectedCity(ctx))
}

func TestSelectedCity_BrokenStore(t *testing.T) {
	s := NewStore(brokenKV{}, "Delhi")
	assert.Equal(t, "Delhi", s.SelectedCity(context.Background()))
	assert.Error(t, s.SetSelectedCity(context.Background(), "Pune"))
}

func TestProfile_SaveLoad(t *testing.T) {
	tests := []struct {
		name     string
		in       domain.Profile
		wantName string
		verified bool
		code     int
	}{
		{"10 位手机号已验证", domain.Profile{Name: " Asha ", Mobile: " 9876543210 "}, "Asha", true, 0},
		{"短手机号未验证", domain.Profile{Name: "Ravi", Mobile: "98765"}, "Ravi", false, 0},
		{"忽略传入的 verified", domain.Profile{Name: "Ravi", Verified: true}, "Ravi", false, 0},
		{"名字必填", domain.Profile{Name: "   ", Mobile: "9876543210"}, "", false, xerr.InvalidProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(memory.NewKV(), "Mumbai")

			got, err := s.Save(ctx, "0xAbC", tt.in)
			if tt.code != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.code, xerr.CodeOf(err))
				assert.Equal(t, "name", xerr.FieldOf(err))

				loaded, err := s.Load(ctx, "0xabc")
				require.NoError(t, err)
				assert.Equal(t, domain.Profile{}, loaded, "失败不能落盘")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.verified, got.Verified)

			loaded, err := s.Load(ctx, "0xABC")
			require.NoError(t, err)
			assert.Equal(t, got, loaded)
			assert.Equal(t, tt.wantName, s.DisplayName(ctx, "0xabc"))
		})
	}
}

func TestProfile_LoadEdgeCases(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV()
	s := NewStore(kv, "")

	p, err := s.Load(ctx, "0x1")
	require.NoError(t, err)
	assert.Equal(t, domain.Profile{}, p)

	require.NoError(t, kv.Set(ctx, "profile_0x1", "{not json"))
	p, err = s.Load(ctx, "0x1")
	require.NoError(t, err)
	assert.Equal(t, domain.Profile{}, p)

	_, err = s.Load(ctx, " ")
	assert.Equal(t, xerr.RequestParamsError, xerr.CodeOf(err))
	assert.Equal(t, "", s.DisplayName(ctx, ""))

	_, err = NewStore(brokenKV{}, "").Load(ctx, "0x1")
	assert.Equal(t, xerr.ServerCommonError, xerr.CodeOf(err))
}
