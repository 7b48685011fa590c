// Package server exposes equation sessions over HTTP. Each session is one
// equationshift.Equation kept in memory under a random id.
//
//	POST   /api/v1/equations               create a session
//	GET    /api/v1/equations/:id           current state
//	DELETE /api/v1/equations/:id           drop the session
//	POST   /api/v1/equations/:id/moves     drag and drop (or preview)
//	POST   /api/v1/equations/:id/steps     apply a named step to both sides
//	POST   /api/v1/equations/:id/activate  invert a function or power
//	GET    /api/v1/equations/:id/history   committed conversions
//	GET    /api/v1/equations/:id/results   solved state and correct results
//	POST   /tool                           stateless tool call
//	GET    /schema                         tool schema
//	GET    /health, /metrics
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/njchilds90/equationshift"
	"github.com/njchilds90/equationshift/token"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type Server struct {
	store    *Store
	defaults equationshift.Config
	logger   *zap.Logger
}

// New returns a server whose sessions start from defaults. Request bodies may
// override individual flags.
func New(defaults equationshift.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: NewStore(DefaultMaxSessions, DefaultIdleTimeout), defaults: defaults, logger: logger}
}

func (s *Server) Store() *Store { return s.store }

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(CustomRecoveryMiddleware(s.logger))
	router.Use(LoggerMiddleware(s.logger))
	router.Use(BodyLimitMiddleware(maxBodyBytes))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/equations", s.createEquation)
		v1.GET("/equations/:id", s.getEquation)
		v1.DELETE("/equations/:id", s.deleteEquation)
		v1.POST("/equations/:id/moves", s.move)
		v1.POST("/equations/:id/steps", s.step)
		v1.POST("/equations/:id/activate", s.activate)
		v1.GET("/equations/:id/history", s.history)
		v1.GET("/equations/:id/results", s.results)
	}

	router.POST("/tool", s.tool)
	router.GET("/schema", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(MCPToolSpec()))
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"time":     time.Now().UTC().Format(time.RFC3339),
			"sessions": s.store.Len(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// HTTPServer wraps the router with conservative timeouts.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// ============================================================
// Views
// ============================================================

type sideView struct {
	Text     string          `json:"text"`
	Tokens   []*token.Token  `json:"tokens"`
	Elements []token.Element `json:"elements"`
}

type equationView struct {
	ID       string   `json:"id"`
	Target   string   `json:"target"`
	Left     sideView `json:"left"`
	Right    sideView `json:"right"`
	Solved   bool     `json:"solved"`
	Result   string   `json:"result,omitempty"`
	Equation string   `json:"equation"`
}

func viewOf(id string, e *equationshift.Equation) equationView {
	left, right := e.Left(), e.Right()
	v := equationView{
		ID:       id,
		Target:   e.Target(),
		Left:     sideView{Text: left.Text(), Tokens: left.Flat(), Elements: left.Elements()},
		Right:    sideView{Text: right.Text(), Tokens: right.Flat(), Elements: right.Elements()},
		Equation: left.Text() + " = " + right.Text(),
	}
	v.Result, v.Solved = e.CurrentResult()
	return v
}

// ============================================================
// Handlers
// ============================================================

type createRequest struct {
	Left   string          `json:"left"`
	Right  string          `json:"right"`
	Target string          `json:"target"`
	Config json.RawMessage `json:"config,omitempty"`
}

func (s *Server) createEquation(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg := s.defaults
	if len(bytes.TrimSpace(req.Config)) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid config: %v", err)})
			return
		}
	}
	e, err := equationshift.New(req.Left, req.Right, req.Target, cfg, equationshift.WithLogger(s.logger))
	if err != nil {
		s.fail(c, err)
		return
	}
	id, err := s.store.Add(e)
	if err != nil {
		s.logger.Warn("Session rejected", zap.Int("sessions", s.store.Len()), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	s.logger.Info("Equation created", zap.String("id", id), zap.String("equation", e.String()))
	c.JSON(http.StatusCreated, viewOf(id, e))
}

func (s *Server) lookup(c *gin.Context) (string, *equationshift.Equation, bool) {
	id := c.Param("id")
	e, ok := s.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "equation not found"})
		return id, nil, false
	}
	return id, e, true
}

func (s *Server) getEquation(c *gin.Context) {
	id, e, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(id, e))
}

func (s *Server) deleteEquation(c *gin.Context) {
	if !s.store.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "equation not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type moveRequest struct {
	Token   int                     `json:"token" binding:"required"`
	Source  equationshift.Container `json:"source"`
	Target  equationshift.Container `json:"target"`
	Index   *int                    `json:"index"`
	Preview bool                    `json:"preview"`
}

type moveResponse struct {
	equationshift.Result
	State equationView `json:"state"`
}

func (s *Server) move(c *gin.Context) {
	id, e, ok := s.lookup(c)
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := equationshift.Move{Token: req.Token, Source: req.Source, Target: req.Target, Index: -1}
	if req.Index != nil {
		m.Index = *req.Index
	}

	start := time.Now()
	res, err := func() (equationshift.Result, error) {
		snap, err := e.Grab(m.Token)
		if err != nil {
			return equationshift.Result{}, err
		}
		if req.Preview {
			return e.Preview(snap, m)
		}
		return e.Drop(snap, m)
	}()
	s.observe(res.Kind, start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, moveResponse{Result: res, State: viewOf(id, e)})
}

type stepRequest struct {
	Step string `json:"step" binding:"required"`
}

func (s *Server) step(c *gin.Context) {
	id, e, ok := s.lookup(c)
	if !ok {
		return
	}
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start := time.Now()
	res, err := e.ApplyStep(req.Step)
	s.observe(equationshift.Step, start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, moveResponse{Result: res, State: viewOf(id, e)})
}

type activateRequest struct {
	Token   int  `json:"token" binding:"required"`
	Preview bool `json:"preview"`
}

func (s *Server) activate(c *gin.Context) {
	id, e, ok := s.lookup(c)
	if !ok {
		return
	}
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start := time.Now()
	res, err := e.Activate(req.Token, !req.Preview)
	s.observe(equationshift.Activation, start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, moveResponse{Result: res, State: viewOf(id, e)})
}

func (s *Server) history(c *gin.Context) {
	_, e, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversions": e.History()})
}

func (s *Server) results(c *gin.Context) {
	_, e, ok := s.lookup(c)
	if !ok {
		return
	}
	current, solved := e.CurrentResult()
	body := gin.H{"solved": solved, "current": current}
	correct, err := e.CorrectResults()
	if err != nil {
		body["error"] = err.Error()
	} else {
		body["correct"] = correct
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) tool(c *gin.Context) {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	var req ToolRequest
	if err := dec.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if dec.More() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: trailing data"})
		return
	}
	resp := HandleToolCall(req)
	result := "ok"
	if resp.Error != "" {
		result = "error"
	}
	toolCallsTotal.WithLabelValues(toolLabel(req.Tool), result).Inc()
	c.JSON(http.StatusOK, resp)
}

// ============================================================
// Errors
// ============================================================

func (s *Server) observe(kind equationshift.MoveKind, start time.Time, err error) {
	movesTotal.WithLabelValues(kind.String(), outcome(err)).Inc()
	moveDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
}

// fail maps engine errors onto status codes.
func (s *Server) fail(c *gin.Context, err error) {
	var (
		verr *equationshift.ValidationError
		perr *equationshift.ParseError
		merr *equationshift.MoveError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, equationshift.ErrUnknownToken):
		status = http.StatusNotFound
	case errors.Is(err, equationshift.ErrLocked), errors.Is(err, equationshift.ErrStaleSnapshot):
		status = http.StatusConflict
	case errors.Is(err, equationshift.ErrPreviewDisabled):
		status = http.StatusForbidden
	case errors.Is(err, equationshift.ErrNotDraggable),
		errors.Is(err, equationshift.ErrRejected),
		errors.Is(err, equationshift.ErrNotActivatable),
		errors.As(err, &perr),
		errors.As(err, &merr):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
