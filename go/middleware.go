package cakecartserver

import (
	"strings"

	"github.com/gin-gonic/gin"

	cartapp "github.com/sugarloaf/cakecart/internal/domains/cart/application"
)

const (
	// HeaderSessionID carries the anonymous session identifier. The server
	// echoes the resolved session key back so fresh anonymous clients can
	// keep their cart across requests.
	HeaderSessionID = "X-Session-Id"

	contextKeySessionKey = "cakecart.sessionKey"
	contextKeyToken      = "cakecart.token"
)

// SessionMiddleware resolves the cart session for each request. A bearer
// token binds the session to the signed-in user; otherwise the X-Session-Id
// header (or a freshly minted identifier) names an anonymous session.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		key := cartapp.SessionKey(token, c.GetHeader(HeaderSessionID))
		c.Set(contextKeySessionKey, key)
		c.Set(contextKeyToken, token)
		c.Header(HeaderSessionID, key)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func sessionKey(c *gin.Context) string {
	return c.GetString(contextKeySessionKey)
}

func sessionToken(c *gin.Context) string {
	return c.GetString(contextKeyToken)
}
