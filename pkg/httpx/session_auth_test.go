package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gunvolt24/shop_admin/internal/ports/mocks"
	"github.com/Gunvolt24/shop_admin/pkg/ctxmeta"
	"github.com/Gunvolt24/shop_admin/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

func newAuthRouter(t *testing.T, mw gin.HandlerFunc, gotShop *string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/api/x", func(c *gin.Context) {
		*gotShop, _ = ctxmeta.ShopFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestSessionAuth_ValidToken_PutsShopIntoContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockSessionVerifier(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), "jwt-token").Return("atelier.myshopify.com", nil)

	var shop string
	r := newAuthRouter(t, httpx.SessionAuth(verifier, nopLogger{}), &shop)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/x", http.NoBody)
	req.Header.Set("Authorization", "Bearer jwt-token")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "atelier.myshopify.com", shop)
}

func TestSessionAuth_MissingToken_401(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockSessionVerifier(ctrl) // Verify не должен вызываться

	var shop string
	r := newAuthRouter(t, httpx.SessionAuth(verifier, nopLogger{}), &shop)

	for _, header := range []string{"", "Basic abc", "Bearer "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/x", http.NoBody)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code, "header=%q", header)
		require.JSONEq(t, `{"error":"missing session token"}`, w.Body.String())
	}
}

func TestSessionAuth_InvalidToken_401(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockSessionVerifier(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), "bad").Return("", errors.New("signature is invalid"))

	var shop string
	r := newAuthRouter(t, httpx.SessionAuth(verifier, nopLogger{}), &shop)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/x", http.NoBody)
	req.Header.Set("Authorization", "bearer bad")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Empty(t, shop)
}

func TestSessionAuth_NilVerifier_Passes(t *testing.T) {
	var shop string
	r := newAuthRouter(t, httpx.SessionAuth(nil, nopLogger{}), &shop)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/x", http.NoBody))

	require.Equal(t, http.StatusNoContent, w.Code)
}
