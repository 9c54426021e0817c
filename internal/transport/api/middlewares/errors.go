package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Errors рендерит первую ошибку из c.Errors, если обработчик сам не записал тело ответа.
//
// Публичные ошибки (gin.ErrorTypePublic) отдаются клиенту как есть, для приватных отдается только
// текст статуса. Ответ в формате {"error": msg}, клиентам с Accept: text/plain отдается строка.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Size() > 0 {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}

		msg := publicMessage(c.Errors[0], status)
		if wantsText(c) {
			c.String(status, msg)
		} else {
			c.JSON(status, gin.H{"error": msg})
		}
		c.Abort()
	}
}

func publicMessage(err *gin.Error, status int) string {
	if err.IsType(gin.ErrorTypePublic) {
		return err.Error()
	}
	text := http.StatusText(status)
	if text == "" {
		text = http.StatusText(http.StatusInternalServerError)
	}
	return strings.ToLower(text)
}

func wantsText(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/plain") && !strings.Contains(accept, "application/json")
}
