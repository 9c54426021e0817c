package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Errors())
	r.GET("/public", func(c *gin.Context) {
		_ = c.AbortWithError(http.StatusBadRequest, errors.New("quantity must be positive")).
			SetType(gin.ErrorTypePublic)
	})
	r.GET("/private", func(c *gin.Context) {
		_ = c.AbortWithError(http.StatusServiceUnavailable, errors.New("pool exhausted")).
			SetType(gin.ErrorTypePrivate)
	})
	r.GET("/written", func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		_ = c.Error(errors.New("bad password"))
	})

	tests := []struct {
		name     string
		url      string
		accept   string
		wantCode int
		wantBody string
	}{
		{name: "public json", url: "/public", wantCode: http.StatusBadRequest,
			wantBody: `{"error":"quantity must be positive"}`},
		{name: "private hides details", url: "/private", wantCode: http.StatusServiceUnavailable,
			wantBody: `{"error":"service unavailable"}`},
		{name: "plain text", url: "/public", accept: "text/plain", wantCode: http.StatusBadRequest,
			wantBody: "quantity must be positive"},
		{name: "body already written", url: "/written", wantCode: http.StatusUnauthorized,
			wantBody: `{"error":"invalid credentials"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.accept == "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
