package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/showcase/internal/store"
)

const adminCookie = "admin_token"

// adminAuthMiddleware rejects requests without the admin session cookie.
func (s *Server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin login required"})
			return
		}
		c.Next()
	}
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
		if !userOK || !passOK {
			slog.Warn("failed admin login", "visitor", s.visitorHash(c))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		c.SetCookie(adminCookie, s.adminToken, 3600*24, "/admin", "", false, true)
		slog.Info("admin login", "visitor", s.visitorHash(c))
		c.JSON(http.StatusOK, gin.H{"message": "logged in"})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		slog.Info("admin logout", "visitor", s.visitorHash(c))
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	})

	admin := r.Group("/admin")
	admin.Use(s.adminAuthMiddleware())

	admin.GET("/api/stats", func(c *gin.Context) {
		s.writeStats(c, false)
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		s.writeStats(c, true)
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		if s.store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tracking disabled"})
			return
		}
		n, err := s.store.Cleanup(c.Request.Context(), s.now().Add(-s.cfg.Retention))
		if err != nil {
			slog.Error("privacy cleanup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
			return
		}
		slog.Info("privacy cleanup", "removed", n)
		c.JSON(http.StatusOK, gin.H{"removed": n})
	})

	admin.GET("/api/views", func(c *gin.Context) {
		var n int
		if err := s.loop.Do(c.Request.Context(), func() { n = s.views.count() }); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"mounted": n})
	})
}

func (s *Server) writeStats(c *gin.Context, download bool) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tracking disabled"})
		return
	}
	stats, err := s.store.Stats(c.Request.Context(), s.now())
	if err != nil {
		slog.Error("error loading admin stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
		return
	}
	if download {
		c.Header("Content-Disposition", "attachment; filename=showcase-stats.json")
		slog.Info("admin stats exported", "visitor", s.visitorHash(c))
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) visitorHash(c *gin.Context) string {
	return store.HashVisitor(s.salt, c.ClientIP())
}
