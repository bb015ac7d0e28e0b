package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseWise/internal/interfaces/http/response"
	"github.com/turtacn/ClauseWise/pkg/errors"
)

// HeaderAPIKey carries the client key.
const HeaderAPIKey = "X-API-Key"

// APIKey rejects requests whose X-API-Key is not one of keys. With no keys
// configured every request passes.
func APIKey(keys []string) gin.HandlerFunc {
	valid := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			valid = append(valid, []byte(k))
		}
	}
	return func(c *gin.Context) {
		if len(valid) == 0 {
			c.Next()
			return
		}
		got := c.GetHeader(HeaderAPIKey)
		if got == "" {
			response.Error(c, errors.Unauthorized("missing API key"))
			return
		}
		for _, k := range valid {
			if subtle.ConstantTimeCompare([]byte(got), k) == 1 {
				c.Next()
				return
			}
		}
		response.Error(c, errors.Unauthorized("invalid API key"))
	}
}

//Personal.AI order the ending
