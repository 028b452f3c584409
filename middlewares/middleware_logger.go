package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-floorplan/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		fields := logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"client_ip":  c.ClientIP(),
		}
		if status >= http.StatusInternalServerError {
			utils.ErrorLogger.WithFields(fields).Errorf("%s | %3d | %13v | %s", c.Request.Method, status, latency, path)
			return
		}
		utils.InfoLogger.WithFields(fields).Infof("%s | %3d | %13v | %s", c.Request.Method, status, latency, path)
	}
}
