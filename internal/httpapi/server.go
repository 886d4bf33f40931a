// Package httpapi serves projected table state and metrics over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/layout"
	"github.com/lox/hiddenhand/internal/projector"
	"github.com/lox/hiddenhand/internal/relay"
)

// Source is the read side of a projector.
type Source interface {
	TableAddress(id address.TableID) (address.Address, error)
	View(table address.Address) (*projector.GameView, bool)
	History(id address.TableID) []layout.HandCompleted
}

var _ Source = (*projector.Projector)(nil)

var releaseMode sync.Once

// Server exposes a Source.
type Server struct {
	source   Source
	gatherer prometheus.Gatherer
	logger   *log.Logger
	engine   *gin.Engine
}

// New builds the routes. A nil gatherer serves the default registry.
func New(source Source, gatherer prometheus.Gatherer, logger *log.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = log.Default()
	}
	releaseMode.Do(func() { gin.SetMode(gin.ReleaseMode) })

	s := &Server{
		source:   source,
		gatherer: gatherer,
		logger:   logger.WithPrefix("http"),
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.logRequests)

	s.engine.GET("/healthz", s.healthz)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	s.engine.GET("/tables/:name", s.table)
	s.engine.GET("/tables/:name/history", s.history)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("Request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start))
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, apiError{Code: code, Message: message})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) tableID(c *gin.Context) (address.TableID, bool) {
	name := c.Param("name")
	if name == "" || len(name) > address.TableIDSize {
		abort(c, http.StatusBadRequest, "invalid table name")
		return address.TableID{}, false
	}
	return address.TableIDFromName(name), true
}

func (s *Server) table(c *gin.Context) {
	id, ok := s.tableID(c)
	if !ok {
		return
	}
	addr, err := s.source.TableAddress(id)
	if err != nil {
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}
	view, ok := s.source.View(addr)
	if !ok {
		abort(c, http.StatusNotFound, "table not projected yet")
		return
	}
	c.JSON(http.StatusOK, NewTableResponse(view))
}

func (s *Server) history(c *gin.Context) {
	id, ok := s.tableID(c)
	if !ok {
		return
	}
	records := s.source.History(id)
	out := make([]relay.HandMessage, 0, len(records))
	for _, ev := range records {
		out = append(out, relay.NewHandMessage(ev, ev.Key().String()))
	}
	c.JSON(http.StatusOK, out)
}
