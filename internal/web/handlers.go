package web

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/infra/line"
	"github.com/xiaowang-jiji/taskbot/internal/usecase"
)

const (
	maxWebhookSize = 1 << 20 // 1MB
	maxSyncSize    = 2*domain.MaxSnapshotBytes + 4<<10 // Payload is JSON inside JSON
	recordsLimit   = 100
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// handleWebhook acknowledges a LINE webhook batch immediately and processes
// it in the background.
func (s *Server) handleWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookSize))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body too large"})
		return
	}

	if !line.VerifySignature(s.deps.ChannelSecret, body, c.GetHeader(line.SignatureHeader)) {
		s.deps.Logger.Warn("", "webhook", "signature mismatch")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	events, err := line.ParseWebhook(body)
	if err != nil {
		s.deps.Logger.Warn("", "webhook", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	fresh := events[:0]
	for _, ev := range events {
		if s.deps.Deduper != nil && s.deps.Deduper.Seen(ev.Base().ID) {
			s.deps.Logger.Debug(ev.Base().UserID, "webhook", "redelivered event "+ev.Base().ID)
			continue
		}
		fresh = append(fresh, ev)
	}

	if len(fresh) > 0 {
		s.inFlight.Add(1)
		ctx := context.WithoutCancel(c.Request.Context())
		go s.process(ctx, c.GetString(RequestIDHeader), fresh)
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// user verifies the ticket and returns its user, or writes 401.
func (s *Server) user(c *gin.Context, ticket string) (string, bool) {
	if s.deps.Ticketer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "view tickets are disabled"})
		return "", false
	}
	userID, err := s.deps.Ticketer.Verify(ticket)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return "", false
	}
	return userID, true
}

func (s *Server) handleRecords(c *gin.Context) {
	userID, ok := s.user(c, c.Query("ticket"))
	if !ok {
		return
	}
	ctx := c.Request.Context()

	out, err := s.deps.List.Execute(ctx, usecase.ListTasksInput{UserID: userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	messages := []domain.MessageRecord{}
	if s.deps.Persistence != nil {
		recs, err := s.deps.Persistence.ListMessages(ctx, userID, recordsLimit)
		if err != nil {
			s.deps.Logger.Warn(userID, "persist", "list messages failed: "+err.Error())
		} else if recs != nil {
			messages = recs
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"payload":  out.Payload,
		"tasks":    out.Tasks,
		"messages": messages,
	})
}

type syncRequest struct {
	Ticket  string `json:"ticket" binding:"required"`
	Payload string `json:"payload" binding:"required"`
}

func (s *Server) handleSync(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSyncSize)

	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticket and payload are required"})
		return
	}
	userID, ok := s.user(c, req.Ticket)
	if !ok {
		return
	}

	out, err := s.deps.Sync.Execute(c.Request.Context(), usecase.SyncTasksInput{UserID: userID, Payload: req.Payload})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if out.Rejected() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": out.RejectErr.Error(),
			"tasks": out.Tasks,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out.Tasks})
}

func (s *Server) handleFavorites(c *gin.Context) {
	userID, ok := s.user(c, c.Query("ticket"))
	if !ok {
		return
	}

	out, err := s.deps.List.Execute(c.Request.Context(), usecase.ListTasksInput{UserID: userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": out.Favorites})
}

func (s *Server) handleDeleteFavorite(c *gin.Context) {
	userID, ok := s.user(c, c.Query("ticket"))
	if !ok {
		return
	}

	out, err := s.deps.RemoveFavorite.Execute(c.Request.Context(), usecase.RemoveFavoriteInput{
		UserID:     userID,
		FavoriteID: c.Param("id"),
	})
	if err != nil {
		if errors.Is(err, domain.ErrFavoriteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": out.Favorite})
}
