package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gostatcheck/adapters/document"
	"gostatcheck/adapters/excel"
	"gostatcheck/app"
	"gostatcheck/domain/core"
	"gostatcheck/domain/verdict"
	"gostatcheck/internal/errors"
	"gostatcheck/internal/records"

	"github.com/gin-gonic/gin"
)

type statcheckRecordsRequest struct {
	Source string              `json:"source"`
	Tests  []records.TestInput `json:"tests"`
}

type grimRecordsRequest struct {
	Source string              `json:"source"`
	Means  []records.MeanInput `json:"means"`
}

// documentRequest carries a document inline; format is txt, html or md
type documentRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
	Format string `json:"format"`
	Runs   int    `json:"runs"`
}

type reportResponse struct {
	*verdict.Report
	Table verdict.Table `json:"table"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"storage": s.runs != nil,
	})
}

func (s *Server) handleStatcheckRecords(c *gin.Context) {
	if s.statcheck == nil {
		s.fail(c, errors.ConfigInvalid("statcheck is not configured"))
		return
	}
	var req statcheckRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	report, err := s.statcheck.CheckRecords(c.Request.Context(), sourceOr(req.Source), req.Tests)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reportResponse{Report: report, Table: app.StatcheckTable(report.Statcheck)})
}

func (s *Server) handleGrimRecords(c *gin.Context) {
	if s.grim == nil {
		s.fail(c, errors.ConfigInvalid("GRIM is not configured"))
		return
	}
	var req grimRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	report, err := s.grim.CheckRecords(c.Request.Context(), sourceOr(req.Source), req.Means)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reportResponse{Report: report, Table: app.GrimTable(report.GRIM, app.DefaultGrimTableOptions)})
}

func (s *Server) handleStatcheckDocument(c *gin.Context) {
	if s.statcheck == nil {
		s.fail(c, errors.ConfigInvalid("statcheck is not configured"))
		return
	}
	req, text, ok := s.bindDocument(c)
	if !ok {
		return
	}
	report, err := s.statcheck.CheckText(c.Request.Context(), sourceOr(req.Source), text, req.Runs)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reportResponse{Report: report, Table: app.StatcheckTable(report.Statcheck)})
}

func (s *Server) handleGrimDocument(c *gin.Context) {
	if s.grim == nil {
		s.fail(c, errors.ConfigInvalid("GRIM is not configured"))
		return
	}
	req, text, ok := s.bindDocument(c)
	if !ok {
		return
	}
	report, err := s.grim.CheckText(c.Request.Context(), sourceOr(req.Source), text, req.Runs)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reportResponse{Report: report, Table: app.GrimTable(report.GRIM, app.DefaultGrimTableOptions)})
}

func (s *Server) bindDocument(c *gin.Context) (documentRequest, string, bool) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return req, "", false
	}
	if strings.TrimSpace(req.Text) == "" {
		s.fail(c, errors.InvalidInput("text is required"))
		return req, "", false
	}
	if _, err := app.ValidateRuns(req.Runs); err != nil {
		s.fail(c, err)
		return req, "", false
	}

	format := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(req.Format), "."))
	switch format {
	case "", "txt", "text":
		return req, req.Text, true
	case "html", "htm", "md", "markdown":
		return req, document.ToText("."+format, []byte(req.Text)), true
	default:
		s.fail(c, errors.InvalidInput(fmt.Sprintf("unsupported document format %q", req.Format)))
		return req, "", false
	}
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.runs == nil {
		s.fail(c, errors.ConfigInvalid("run storage is disabled; set DATABASE_URL"))
		return
	}
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	runs, err := s.runs.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.fail(c, errors.DatabaseError("failed to list runs", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs":   runs,
		"count":  len(runs),
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleGetRun(c *gin.Context) {
	report, ok := s.loadRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reportResponse{Report: report, Table: tableOf(report, app.DefaultGrimTableOptions)})
}

func (s *Server) handleExportRun(c *gin.Context) {
	format, err := excel.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		s.fail(c, errors.InvalidInput(err.Error()))
		return
	}
	report, ok := s.loadRun(c)
	if !ok {
		return
	}

	opts := app.GrimTableOptions{
		ApplicableOnly: c.DefaultQuery("applicable_only", "true") == "true",
		Dedupe:         c.DefaultQuery("dedupe", "true") == "true",
	}
	var buf bytes.Buffer
	if err := excel.Write(&buf, format, tableOf(report, opts)); err != nil {
		s.fail(c, errors.Wrap(err, "failed to export run"))
		return
	}

	filename := fmt.Sprintf("%s_%s.%s", report.Kind, report.ID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) loadRun(c *gin.Context) (*verdict.Report, bool) {
	if s.runs == nil {
		s.fail(c, errors.ConfigInvalid("run storage is disabled; set DATABASE_URL"))
		return nil, false
	}
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		s.fail(c, errors.InvalidInput(err.Error()))
		return nil, false
	}
	report, err := s.runs.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return report, true
}

func (s *Server) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.Classify(err),
	})
}

func tableOf(report *verdict.Report, opts app.GrimTableOptions) verdict.Table {
	if report.Kind == verdict.KindGRIM {
		return app.GrimTable(report.GRIM, opts)
	}
	return app.StatcheckTable(report.Statcheck)
}

func sourceOr(source string) string {
	if strings.TrimSpace(source) == "" {
		return "inline"
	}
	return source
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}
