package httpx

import (
	"fmt"
	"strconv"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/gin-gonic/gin"
)

// ClampInt — ограничение значения v в диапазоне [min, max].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParsePageSize — читает размер страницы из query-параметра key.
// Нет параметра — defaultSize. Не число или вне [1, maxSize] — ErrValidation, без клампинга.
func ParsePageSize(c *gin.Context, key string, defaultSize, maxSize int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return defaultSize, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrValidation, key, raw)
	}
	if v < 1 || v > maxSize {
		return 0, fmt.Errorf("%w: %s must be between 1 and %d, got %d", domain.ErrValidation, key, maxSize, v)
	}
	return v, nil
}
