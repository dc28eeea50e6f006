package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"erdsketch/internal/db"
	"erdsketch/internal/errclass"
	"erdsketch/internal/graph"
	"erdsketch/internal/logger"
	"erdsketch/internal/model"
	"erdsketch/internal/sandbox"
	"erdsketch/internal/sqlgen"
	"erdsketch/internal/sqlschema"
	"erdsketch/pkg/config"
)

type importRequest struct {
	SQL string `json:"sql"`
}

type parseErrorView struct {
	Index    int    `json:"index"`
	Strategy string `json:"strategy"`
	Message  string `json:"message"`
}

type importResponse struct {
	OK bool `json:"ok"`
	graph.Graph
	Warnings           []string         `json:"warnings"`
	ParseErrors        []parseErrorView `json:"parseErrors"`
	FallbackStatements []int            `json:"fallbackStatements,omitempty"`
}

type exportRequest struct {
	Nodes []graph.Node `json:"nodes"`
}

type exportResponse struct {
	OK     bool            `json:"ok"`
	SQL    string          `json:"sql"`
	Verify *sandbox.Report `json:"verify,omitempty"`
}

type errorResponse struct {
	OK    bool            `json:"ok"`
	Error errclass.Report `json:"error"`
}

func fail(c *gin.Context, status int, err error, ctx errclass.Context) {
	report := errclass.Classify(err, ctx)
	logger.Warn("%s %s failed (%s): %v", c.Request.Method, c.Request.URL.Path, report.Category, err)
	c.JSON(status, errorResponse{Error: report})
}

func (s *Server) newImportResponse(imp *sqlschema.Import) importResponse {
	resp := importResponse{
		OK:                 true,
		Graph:              graph.Convert(imp.Schema, s.layout()),
		Warnings:           imp.Warnings,
		ParseErrors:        make([]parseErrorView, 0, len(imp.ParseErrors)),
		FallbackStatements: imp.FallbackStatements,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	for _, pe := range imp.ParseErrors {
		resp.ParseErrors = append(resp.ParseErrors, parseErrorView{Index: pe.Index, Strategy: pe.Strategy, Message: pe.Err.Error()})
	}
	return resp
}

// handleImport parses a SQL text into diagram nodes and edges.
func (s *Server) handleImport(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err), errclass.ImportContext)
		return
	}

	start := time.Now()
	imp, err := s.parser.Parse(req.SQL)
	importDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		importsTotal.WithLabelValues("sql", "failed").Inc()
		status := http.StatusUnprocessableEntity
		if sqlschema.IsInputError(err) {
			status = http.StatusBadRequest
		}
		fail(c, status, err, errclass.ImportContext)
		return
	}

	importsTotal.WithLabelValues("sql", "ok").Inc()
	fallbackStatements.Add(float64(len(imp.FallbackStatements)))
	c.JSON(http.StatusOK, s.newImportResponse(imp))
}

func queryBool(c *gin.Context, key string, def bool) (bool, error) {
	v, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter %q", key, v)
	}
	return b, nil
}

// handleExport renders the posted nodes as CREATE TABLE statements.
func (s *Server) handleExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err), errclass.ExportContext)
		return
	}

	exp := s.currentConfig().Export
	verify, err := queryBool(c, "verify", exp.Verify)
	if err != nil {
		fail(c, http.StatusBadRequest, err, errclass.ExportContext)
		return
	}
	modifiers, err := queryBool(c, "modifiers", exp.IncludeModifiers)
	if err != nil {
		fail(c, http.StatusBadRequest, err, errclass.ExportContext)
		return
	}

	tables := graph.Graph{Nodes: req.Nodes}.Tables()
	out := sqlgen.GenerateWith(tables, sqlgen.Options{IncludeModifiers: modifiers})
	resp := exportResponse{OK: true, SQL: out}

	if verify && out != sqlgen.NoTables {
		report, err := sandbox.Check(c.Request.Context(), out, tables)
		if err != nil {
			exportsTotal.WithLabelValues("failed").Inc()
			fail(c, http.StatusInternalServerError, err, errclass.ExportContext)
			return
		}
		resp.Verify = report
		resp.OK = report.OK
	}

	if resp.OK {
		exportsTotal.WithLabelValues("ok").Inc()
	} else {
		exportsTotal.WithLabelValues("rejected").Inc()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDataTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "dataTypes": model.DataTypes()})
}

// handleGetConnect returns the configured database parameters.
func (s *Server) handleGetConnect(c *gin.Context) {
	d := s.currentConfig().Database
	d.Type = config.NormalizeDriver(d.Type)
	c.JSON(http.StatusOK, gin.H{"ok": true, "config": d})
}

// handleConnect tests the posted database parameters and returns the diagram
// of the database. On success the connection becomes active.
func (s *Server) handleConnect(c *gin.Context) {
	var dbReq config.DBConfig
	if err := c.ShouldBindJSON(&dbReq); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err), errclass.NoContext)
		return
	}
	driver, dsn, err := config.BuildDriverAndDSN(dbReq)
	if err != nil {
		fail(c, http.StatusBadRequest, err, errclass.NoContext)
		return
	}

	_, _, timeout := s.getActive()
	imp, err := importDatabase(c.Request.Context(), driver, dsn, timeout)
	if err != nil {
		s.failImport(c, err)
		return
	}

	s.mu.Lock()
	s.cfg.Database = dbReq
	s.mu.Unlock()
	s.setActive(driver, dsn, timeout)
	c.JSON(http.StatusOK, s.newImportResponse(imp))
}

// handleSchema re-reads the active database.
func (s *Server) handleSchema(c *gin.Context) {
	driver, dsn, timeout := s.getActive()
	if driver == "" || dsn == "" {
		fail(c, http.StatusBadRequest, errors.New("no active connection; POST /api/connect to create one"), errclass.NoContext)
		return
	}
	imp, err := importDatabase(c.Request.Context(), driver, dsn, timeout)
	if err != nil {
		s.failImport(c, err)
		return
	}
	c.JSON(http.StatusOK, s.newImportResponse(imp))
}

func importDatabase(ctx context.Context, driver, dsn string, timeoutSec int) (*sqlschema.Import, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()

	catalog, err := db.ConnectAndExtractContext(ctx, driver, dsn)
	if err == nil {
		var imp *sqlschema.Import
		if imp, err = db.ImportCatalog(catalog); err == nil {
			importsTotal.WithLabelValues("database", "ok").Inc()
			return imp, nil
		}
	}
	importsTotal.WithLabelValues("database", "failed").Inc()
	return nil, err
}

func (s *Server) failImport(c *gin.Context, err error) {
	var verr *sqlschema.ValidationError
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusUnprocessableEntity, err, errclass.ImportContext)
	case errors.Is(err, db.ErrEmptyCatalog):
		fail(c, http.StatusUnprocessableEntity, err, errclass.ImportContext)
	default:
		fail(c, http.StatusBadGateway, err, errclass.NoContext)
	}
}
