package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fsdevblog/bookstore/internal/service/tokens"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestAdminRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := []byte("secret")

	r := gin.New()
	r.GET("/protected", AdminRequired(secret), func(c *gin.Context) {
		id, _ := c.Get(CurrentAdminIDKey)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	valid, err := tokens.GenerateAdminJWT(3, "root", time.Hour, secret)
	require.NoError(t, err)
	expired, err := tokens.GenerateAdminJWT(3, "root", -time.Hour, secret)
	require.NoError(t, err)
	foreign, err := tokens.GenerateAdminJWT(3, "root", time.Hour, []byte("other"))
	require.NoError(t, err)

	cases := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "no header", wantStatus: http.StatusUnauthorized},
		{name: "no bearer prefix", header: valid, wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "foreign key", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			require.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
