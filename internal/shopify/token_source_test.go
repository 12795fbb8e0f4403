package shopify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestTokenSource_CachesSessionToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSessionRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), "atelier.myshopify.com").
		Return(&domain.ShopSession{Shop: "atelier.myshopify.com", AccessToken: "shpat_db"}, nil).
		Times(1)

	src := NewTokenSource(repo, 8, time.Minute, "", "", nopLogger{})

	for i := 0; i < 3; i++ {
		token, err := src.AccessToken(context.Background(), "atelier.myshopify.com")
		require.NoError(t, err)
		require.Equal(t, "shpat_db", token)
	}
}

func TestTokenSource_ExpiredEntry_Reloaded(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSessionRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), "atelier.myshopify.com").
		Return(&domain.ShopSession{Shop: "atelier.myshopify.com", AccessToken: "shpat_db"}, nil).
		Times(2)

	src := NewTokenSource(repo, 8, 30*time.Millisecond, "", "", nopLogger{})

	_, err := src.AccessToken(context.Background(), "atelier.myshopify.com")
	require.NoError(t, err)
	time.Sleep(80 * time.Millisecond)
	_, err = src.AccessToken(context.Background(), "atelier.myshopify.com")
	require.NoError(t, err)
}

func TestTokenSource_Fallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSessionRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), "atelier.myshopify.com").Return(nil, nil)

	src := NewTokenSource(repo, 8, time.Minute, "atelier.myshopify.com", "shpat_env", nopLogger{})

	token, err := src.AccessToken(context.Background(), "atelier.myshopify.com")
	require.NoError(t, err)
	require.Equal(t, "shpat_env", token)
}

func TestTokenSource_Fallback_OnlyForConfiguredShop(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSessionRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), "other.myshopify.com").Return(nil, nil)

	src := NewTokenSource(repo, 8, time.Minute, "Atelier.myshopify.com", "shpat_env", nopLogger{})

	token, err := src.AccessToken(context.Background(), "other.myshopify.com")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	require.Empty(t, token)

	// регистр домена не важен
	repo.EXPECT().Get(gomock.Any(), "ATELIER.myshopify.com").Return(nil, nil)
	token, err = src.AccessToken(context.Background(), "ATELIER.myshopify.com")
	require.NoError(t, err)
	require.Equal(t, "shpat_env", token)
}

func TestTokenSource_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSessionRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), "atelier.myshopify.com").Return(nil, nil)

	src := NewTokenSource(repo, 8, time.Minute, "", "", nopLogger{})

	_, err := src.AccessToken(context.Background(), "atelier.myshopify.com")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestTokenSource_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSessionRepository(ctrl)
	dbErr := errors.New("conn refused")
	repo.EXPECT().Get(gomock.Any(), "atelier.myshopify.com").Return(nil, dbErr)

	src := NewTokenSource(repo, 8, time.Minute, "atelier.myshopify.com", "shpat_env", nopLogger{})

	_, err := src.AccessToken(context.Background(), "atelier.myshopify.com")
	require.ErrorIs(t, err, dbErr)
}

func TestTokenSource_Save_WarmsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSessionRepository(ctrl)
	session := &domain.ShopSession{Shop: "atelier.myshopify.com", AccessToken: "shpat_new", Scope: "read_orders"}
	repo.EXPECT().Save(gomock.Any(), session).Return(nil)
	// Get не ожидается: токен уже в кэше

	src := NewTokenSource(repo, 8, time.Minute, "", "", nopLogger{})
	require.NoError(t, src.Save(context.Background(), session))

	token, err := src.AccessToken(context.Background(), "atelier.myshopify.com")
	require.NoError(t, err)
	require.Equal(t, "shpat_new", token)
}
