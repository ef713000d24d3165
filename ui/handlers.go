package ui

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gradscope/adapters/excel"
	"gradscope/app"
	"gradscope/domain/filter"
	"gradscope/internal/errors"
	"gradscope/ui/middleware"
)

func (s *Server) handleVariants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"variants": s.explorer.Variants(),
		"default":  s.explorer.DefaultVariant(),
	})
}

// handleOptions reads the criteria from the query string:
// ?variant=explorer&majors=Biology&majors=History&degree=Masters&start_year=2010
func (s *Server) handleOptions(c *gin.Context) {
	crit := filter.Criteria{
		Majors:     c.QueryArray("majors"),
		Degree:     c.Query("degree"),
		StartYear:  c.Query("start_year"),
		EndYear:    c.Query("end_year"),
		Gender:     c.Query("gender"),
		Employment: c.Query("employment"),
	}
	opts, err := s.explorer.Options(c.Request.Context(), c.Query("variant"), crit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (s *Server) handleExplore(c *gin.Context) {
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}
	view, err := s.explorer.Run(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"request_id": middleware.GetRequestID(c),
		"view":       view,
	})
}

func (s *Server) handleRows(c *gin.Context) {
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		s.writeError(c, errors.InvalidInput("offset must be a non-negative integer"))
		return
	}
	limit, err := queryInt(c, "limit", DefaultRowLimit)
	if err != nil || limit <= 0 {
		s.writeError(c, errors.InvalidInput("limit must be a positive integer"))
		return
	}
	limit = min(limit, MaxRowLimit)

	res, err := s.explorer.Filter(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	page := res.Rows.Slice(offset, limit)
	c.JSON(http.StatusOK, gin.H{
		"majors_label": req.Criteria.Restrict(filter.DefaultOrder).MajorsLabel(),
		"total":        res.Rows.Len(),
		"offset":       offset,
		"limit":        limit,
		"columns":      page.Columns(),
		"rows":         page.Records(),
		"warnings":     res.Warnings,
	})
}

func (s *Server) handleExport(c *gin.Context) {
	exporter, err := excel.NewExporter(c.DefaultQuery("format", "csv"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}
	res, err := s.explorer.Filter(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	body, err := exporter.Export(res.Rows)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="graduates.%s"`, exporter.Extension()))
	c.Data(http.StatusOK, exporter.ContentType(), body)
}

func (s *Server) handleReload(c *gin.Context) {
	if s.loader == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "reload is not available"})
		return
	}
	snap, err := s.loader.Load(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// bindRequest decodes an ExplorerRequest; an empty body means defaults.
func (s *Server) bindRequest(c *gin.Context) (app.ExplorerRequest, bool) {
	req := app.ExplorerRequest{Criteria: filter.DefaultCriteria()}
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		s.writeError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return req, false
	}
	if v := c.Query("variant"); v != "" && req.Variant == "" {
		req.Variant = v
	}
	return req, true
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[Server] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error":      err.Error(),
		"code":       errors.GetCode(err),
		"request_id": middleware.GetRequestID(c),
	})
}

func statusFor(err error) int {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeInvalidFilter:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		// the only lookup that can miss is the dataset snapshot
		return http.StatusServiceUnavailable
	case errors.CodeDatasetLoad, errors.CodeDatabaseError:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
