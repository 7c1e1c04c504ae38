package middleware

import (
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

const contentSecurityPolicy = "default-src 'none'; frame-ancestors 'self'"

// SecureHeaders sets the conservative response headers an API behind a
// browser client should carry. TLS is terminated upstream, so no redirect.
func SecureHeaders() gin.HandlerFunc {
	return secure.New(secure.Config{
		ContentTypeNosniff:      true,
		CustomFrameOptionsValue: "SAMEORIGIN",
		ReferrerPolicy:          "no-referrer",
		ContentSecurityPolicy:   contentSecurityPolicy,
		IENoOpen:                true,
		BrowserXssFilter:        true,
	})
}
