package server

import (
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleCleanup is the cleanup sweeper: a single-pass batch delete of
// expired games, cascading to dependents. The real scheduler hits it hourly;
// a manual run needs the shared secret header. Failures are reported in the
// body and never block the next scheduled run.
func (s *Server) handleCleanup(c *gin.Context) {
	if s.cfg.CleanupSecret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cleanup is not configured"})
		return
	}
	provided := c.GetHeader("X-Cleanup-Secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(s.cfg.CleanupSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid cleanup secret"})
		return
	}
	deleted, err := s.sessions.DeleteExpired(time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"deleted": deleted, "error": err.Error()})
		return
	}
	log.Printf("cleanup sweep deleted=%d", deleted)
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
