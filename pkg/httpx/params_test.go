package httpx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/pkg/httpx"
	"github.com/gin-gonic/gin"
)

// Утилита для создания *gin.Context с query-строкой
func ctxWithQuery(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/?"+rawQuery, http.NoBody)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func TestClampInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		v, min, max int
		want        int
	}{
		{"below_min", 0, 1, 10, 1},
		{"above_max", 11, 1, 10, 10},
		{"inside", 5, 1, 10, 5},
		{"equal_min", 1, 1, 10, 1},
		{"equal_max", 10, 1, 10, 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := httpx.ClampInt(tt.v, tt.min, tt.max); got != tt.want {
				t.Fatalf("ClampInt(%d,%d,%d) = %d, want %d", tt.v, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestParsePageSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rawQuery string
		want     int
		wantErr  bool
	}{
		{"missing_uses_default", "", 20, false},
		{"empty_uses_default", "first=", 20, false},
		{"ok", "first=25", 25, false},
		{"equal_max", "first=250", 250, false},
		{"equal_min", "first=1", 1, false},

		// вне диапазона: отказ до обращения к upstream
		{"zero", "first=0", 0, true},
		{"negative", "first=-5", 0, true},
		{"above_max", "first=251", 0, true},
		{"non_int", "first=foo", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := ctxWithQuery(tt.rawQuery)
			got, err := httpx.ParsePageSize(c, "first", 20, 250)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("want ErrValidation, got %v (query=%q)", err, tt.rawQuery)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got %d err=%v, want %d (query=%q)", got, err, tt.want, tt.rawQuery)
			}
		})
	}
}
