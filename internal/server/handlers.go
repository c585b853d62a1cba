package server

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ccollicutt/logtriage/pkg/analyzer"
	"github.com/ccollicutt/logtriage/pkg/config"
	"github.com/ccollicutt/logtriage/pkg/detector"
	"github.com/ccollicutt/logtriage/pkg/output"
	"github.com/ccollicutt/logtriage/pkg/parser"
)

// DefaultSourceName labels request bodies in reports.
const DefaultSourceName = "request"

var contentTypes = map[string]string{
	config.OutputText:    echo.MIMETextPlainCharsetUTF8,
	config.OutputMsgpack: "application/msgpack",
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) handleFormats(c echo.Context) error {
	return c.JSON(http.StatusOK, detector.New().Catalog())
}

// handleAnalyze runs one analysis over the request body. Query parameters
// override the server configuration for this request only.
func (s *Server) handleAnalyze(c echo.Context) error {
	cfg := *s.base
	cfg.Webhooks = append([]config.WebhookConfig(nil), s.base.Webhooks...)

	format := config.OutputJSON
	sourceName := DefaultSourceName
	var notify bool
	err := echo.QueryParamsBinder(c).
		Bool("errors_only", &cfg.ErrorsOnly).
		Bool("include_warnings", &cfg.IncludeWarnings).
		String("since", &cfg.Since).
		String("until", &cfg.Until).
		String("pattern", &cfg.Pattern).
		Int("top", &cfg.TopN).
		Int("syslog_year", &cfg.SyslogYear).
		String("format", &format).
		String("source", &sourceName).
		Bool("notify", &notify).
		BindError()
	if err != nil {
		return newBadRequestError("invalid query parameter", err)
	}

	cfg.Output = format
	if err := config.Validate(&cfg); err != nil {
		return newBadRequestError("invalid analysis options", err)
	}

	a, err := analyzer.NewAnalyzer(&cfg, analyzer.WithLogger(s.logger))
	if err != nil {
		return newBadRequestError("invalid analysis options", err)
	}

	ctx := c.Request().Context()
	source := parser.NewReaderSource(c.Request().Body, sourceName)
	defer source.Close()

	result, err := a.Analyze(ctx, source)
	if err != nil {
		return err
	}

	report := output.NewReport(result, output.ReportOptions{TopN: cfg.TopN})
	c.Response().Header().Set(RunIDHeader, report.RunID)

	if notify && len(cfg.Webhooks) > 0 {
		s.webhooks.Dispatch(ctx, cfg.Webhooks, report, s.logger)
	}

	if format == config.OutputJSON {
		return c.JSON(http.StatusOK, report)
	}

	formatter, err := output.NewFormatter(format, output.FormatOptions{})
	if err != nil {
		return newBadRequestError("invalid format", err)
	}
	var buf bytes.Buffer
	if err := formatter.Format(ctx, report, &buf); err != nil {
		return newInternalError("formatting report", err)
	}
	return c.Blob(http.StatusOK, contentTypes[format], buf.Bytes())
}
