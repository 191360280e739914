package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/typhfeng/projecttrack/gitcmd"
	"github.com/typhfeng/projecttrack/github"
	"github.com/typhfeng/projecttrack/scanmanager"
)

// Server is the HTTP face of the daemon. All reads go through the scan
// manager's cache; every write action invalidates it.
type Server struct {
	ConfigPath string
	Manager    *scanmanager.ScanManager
	Git        *gitcmd.Client
	GitHub     *github.Client
	Log        zerolog.Logger

	server *http.Server
}

func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.health)
	r.GET("/api/dashboard", s.dashboard)
	r.GET("/api/search", s.search)
	r.POST("/api/refresh", s.refresh)
	r.GET("/api/config", s.configView)

	r.POST("/api/repos", s.addRepo)
	r.DELETE("/api/repos", s.removeRepo)

	r.GET("/api/group/:track", s.group)
	r.POST("/api/group/:track/sync", s.groupSync)

	r.GET("/api/repo/:id", s.repoDetails)
	r.POST("/api/repo/:id/sync", s.repoSync)
	r.POST("/api/repo/:id/commit", s.repoCommit)
	r.POST("/api/repo/:id/issue", s.repoIssue)
	r.POST("/api/repo/:id/todo", s.todoAdd)
	r.PATCH("/api/repo/:id/todo", s.todoUpdate)

	return r
}

// Start serves the API on listen until Stop is called.
func (s *Server) Start(listen string) error {
	s.server = &http.Server{
		Addr:    listen,
		Handler: s.setupRouter(),
	}
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Log.Error().Str("error", err.Error()).Msg("http server failed")
		}
	}()
	s.Log.Debug().Str("service", "api").Str("listen", listen).Msg("started")
	return nil
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.Log.Debug().Str("service", "api").Msg("stopped")
	return err
}
