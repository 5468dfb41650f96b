// Package web serves the LINE webhook and the browser view API.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/infra/line"
	"github.com/xiaowang-jiji/taskbot/internal/usecase"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-Id"

// Deps contains the collaborators of the HTTP server.
// Fields are ordered to minimize memory padding.
type Deps struct {
	Dispatch       *usecase.HandleEvent
	Deliver        *usecase.DeliverReply
	List           *usecase.ListTasks
	Sync           *usecase.SyncTasks
	RemoveFavorite *usecase.RemoveFavorite
	Persistence    domain.Persistence // Optional; records carry no messages without it
	Ticketer       domain.Ticketer
	Deduper        *line.Deduper // Optional
	Logger         domain.Logger
	RequestLog     *slog.Logger // Optional; requests are not logged without it
	ChannelSecret  string       // Empty disables the signature check
	WebhookPath    string
}

// Server is the taskbot HTTP server.
type Server struct {
	deps     Deps
	router   *gin.Engine
	inFlight sync.WaitGroup
}

// NewServer creates a new server and registers its routes.
func NewServer(deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(deps.RequestLog))

	if deps.Logger == nil {
		deps.Logger = domain.NopLogger{}
	}
	if deps.WebhookPath == "" {
		deps.WebhookPath = domain.DefaultWebhookPath
	}

	s := &Server{
		deps:   deps,
		router: router,
	}

	router.POST(deps.WebhookPath, s.handleWebhook)
	router.GET("/health", s.handleHealth)

	// Browser view API, authorized by a sealed ticket
	api := router.Group("/api")
	{
		api.GET("/records", s.handleRecords)
		api.POST("/sync", s.handleSync)
		api.GET("/favorites", s.handleFavorites)
		api.DELETE("/favorites/:id", s.handleDeleteFavorite)
	}

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Wait blocks until every accepted webhook batch has been processed.
func (s *Server) Wait() {
	s.inFlight.Wait()
}

// requestID assigns every request an id and echoes it in the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if log == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		log.LogAttrs(c.Request.Context(), slog.LevelInfo, "request",
			slog.String("id", c.GetString(RequestIDHeader)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// process dispatches a webhook batch in order and delivers each reply.
func (s *Server) process(ctx context.Context, requestID string, events []domain.Event) {
	defer s.inFlight.Done()
	for _, ev := range events {
		base := ev.Base()
		reply := s.deps.Dispatch.Execute(ctx, ev)
		err := s.deps.Deliver.Execute(ctx, usecase.DeliverReplyInput{
			Reply:      reply,
			UserID:     base.UserID,
			ReplyToken: base.ReplyToken,
		})
		if err != nil {
			s.deps.Logger.Error(base.UserID, "deliver", "request "+requestID+": "+err.Error())
		}
	}
}
