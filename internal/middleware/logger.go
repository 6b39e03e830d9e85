package middleware

import (
	"fmt"
	"io"
	"net/url"

	"github.com/gin-gonic/gin"
)

// AccessLogger remplace le logger de gin.Default : le token passé en query
// string par le WebSocket n'est jamais écrit dans les logs
func AccessLogger(out io.Writer) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: accessLogFormat,
		Output:    out,
	})
}

func accessLogFormat(p gin.LogFormatterParams) string {
	return fmt.Sprintf("[GIN] %v | %3d | %13v | %15s | %-7s %#v\n%s",
		p.TimeStamp.Format("2006/01/02 - 15:04:05"),
		p.StatusCode,
		p.Latency,
		p.ClientIP,
		p.Method,
		redactedPath(p.Request.URL),
		p.ErrorMessage,
	)
}

func redactedPath(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
	}
	return u.Path + "?" + q.Encode()
}
