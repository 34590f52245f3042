package public

import (
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

func getContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, key, invalidKey, typeInvalidKey)
}

func getUserID(c *gin.Context) (uint, bool) {
	return getContextUintWithKeys(c, "user_id", "error.user_id_invalid", "error.user_id_type_invalid")
}

// getCartProfile 取购物车档案标识，由中间件写入上下文
func getCartProfile(c *gin.Context) (string, bool) {
	value, exists := c.Get("cart_profile")
	if !exists {
		respondError(c, response.CodeBadRequest, "error.cart_profile_invalid", nil)
		return "", false
	}
	profile, ok := value.(string)
	if !ok || strings.TrimSpace(profile) == "" {
		respondError(c, response.CodeBadRequest, "error.cart_profile_invalid", nil)
		return "", false
	}
	return profile, true
}
