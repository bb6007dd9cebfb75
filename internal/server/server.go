// Package server implements the remote key-document store service: a single
// endpoint accepting a type selector, serving whole JSON documents on GET and
// replacing them wholesale on POST.
//
//	GET  /api/data?type={users|tasks|templates|orgs}  -> stored JSON array ([] if none)
//	GET  /api/data?type=health                        -> {"status":"ok"}
//	POST /api/data?type={users|tasks|templates|orgs}  -> {"success":true,"count":N}
//
// Invalid types yield a client error; internal failures yield a server error
// with a message. Cross-origin GET/POST is permitted from any origin.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// validTypes are the document selectors accepted by the data endpoint.
var validTypes = map[string]bool{
	"users":     true,
	"tasks":     true,
	"templates": true,
	"orgs":      true,
}

// Server hosts the document endpoint over an embedded DocStore.
type Server struct {
	store  *DocStore
	logger *log.Logger
	router *gin.Engine

	addr     string
	listener net.Listener
	server   *http.Server
	wg       sync.WaitGroup
}

// Config holds server configuration.
type Config struct {
	// Port to listen on (default: 8090)
	Port int

	// Logger for request activity (default: log.Default())
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:   8090,
		Logger: log.Default(),
	}
}

// New creates a server over the given document store.
func New(store *DocStore, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	s := &Server{
		store:  store,
		logger: config.Logger,
		addr:   fmt.Sprintf(":%d", config.Port),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(corsMiddleware())

	router.GET("/api/data", s.handleGet)
	router.POST("/api/data", s.handlePost)

	s.router = router
	return s
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving. Non-blocking; use Stop for graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("remote store service listening on %s", s.addr)
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.wg.Wait()
	s.logger.Printf("remote store service stopped")
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) handleGet(c *gin.Context) {
	docType := c.Query("type")

	if docType == "health" {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	if !validTypes[docType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown type %q", docType)})
		return
	}

	body, found, err := s.store.Get(docType)
	if err != nil {
		s.logger.Printf("read %s failed: %v", docType, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		body = "[]"
	}
	c.Data(http.StatusOK, "application/json", []byte(body))
}

func (s *Server) handlePost(c *gin.Context) {
	docType := c.Query("type")
	if !validTypes[docType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown type %q", docType)})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return
	}

	// The body must be a JSON array; it replaces the stored document as-is.
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON array"})
		return
	}

	if err := s.store.Put(docType, string(body)); err != nil {
		s.logger.Printf("store %s failed: %v", docType, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(records)})
}

// corsMiddleware permits cross-origin GET/POST from any origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestIDMiddleware tags every response for log correlation.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", uuid.NewString())
		c.Next()
	}
}
