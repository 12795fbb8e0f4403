package httpx

import (
	"net/http"
	"strings"

	"github.com/Gunvolt24/shop_admin/internal/ports"
	"github.com/Gunvolt24/shop_admin/pkg/ctxmeta"
	"github.com/gin-gonic/gin"
)

// SessionAuth проверяет session token встроенной админки (Authorization: Bearer <jwt>)
// и кладёт домен магазина в контекст. verifier == nil — проверка выключена (локальная разработка).
func SessionAuth(verifier ports.SessionVerifier, log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}

		shop, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Warnf(c.Request.Context(), "session token rejected: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		c.Request = c.Request.WithContext(ctxmeta.WithShop(c.Request.Context(), shop))
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
