package api

import (
	"net/http"
	"strconv"

	"gosof/app"
	"gosof/domain/core"
	"gosof/domain/sof"
	gosof "gosof/internal"
	"gosof/internal/export"

	"github.com/gin-gonic/gin"
)

// Server exposes the compute pipeline over HTTP
type Server struct {
	router  *gin.Engine
	compute *app.ComputeService
	log     *gosof.Logger
}

// NewServer creates a new API server instance
func NewServer(compute *app.ComputeService, log *gosof.Logger) *Server {
	if log == nil {
		log = gosof.DefaultLogger
	}
	s := &Server{
		router:  gin.Default(),
		compute: compute,
		log:     log.Named("Server"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/compute", s.handleCompute)
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
	api.GET("/runs/:id/report", s.handleRunReport)
	api.GET("/runs/:id/report.csv", s.handleRunCSV)
}

// Router exposes the underlying gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts the server on the given address
func (s *Server) Run(addr string) error {
	s.log.Info("listening on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": sof.Version})
}

func (s *Server) handleCompute(c *gin.Context) {
	var body ComputeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	opts := sof.DefaultOptions()
	if body.Options != nil {
		opts = *body.Options
	}

	run, err := s.compute.ComputeTables(c.Request.Context(), body.Samples, body.Limits, opts)
	if err != nil {
		// Typed compute failures are the caller's to fix; everything else
		// is ours.
		if core.IsComputeError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("compute failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, ComputeResponse{
		RunID:  run.ID.String(),
		Result: run.Result,
	})
}

func (s *Server) handleGetRun(c *gin.Context) {
	run, ok := s.lookupRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	runs, err := s.compute.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		s.log.Error("list runs failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := make([]RunSummaryResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunSummaryResponse{
			RunID:     run.ID.String(),
			CreatedAt: run.CreatedAt.String(),
			SofTotal:  run.Result.Summary.SofTotal,
			PassLimit: run.Result.Summary.PassLimit,
			RuleName:  run.Result.Summary.RuleName,
		})
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

func (s *Server) handleRunReport(c *gin.Context) {
	run, ok := s.lookupRun(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", export.BuildHTML(run))
}

func (s *Server) handleRunCSV(c *gin.Context) {
	run, ok := s.lookupRun(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="sof_results.csv"`)
	c.Status(http.StatusOK)
	if err := export.WriteResultsCSV(c.Writer, &run.Result); err != nil {
		s.log.Error("csv export failed: %v", err)
	}
}

func (s *Server) lookupRun(c *gin.Context) (*sof.Run, bool) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return nil, false
	}
	run, err := s.compute.GetRun(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return nil, false
	}
	return run, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
