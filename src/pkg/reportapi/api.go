// Package reportapi serves reports over HTTP with Echo.
package reportapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"embroidery-reports/src/pkg/aggregate"
	"embroidery-reports/src/pkg/canvas"
	"embroidery-reports/src/pkg/compose"
	"embroidery-reports/src/pkg/reporting"
)

// Generator is the part of reporting.Service the handlers use.
type Generator interface {
	Generate(ctx context.Context, req reporting.Request) (*reporting.Output, error)
	Summarize(ctx context.Context, req reporting.Request) (*reporting.Output, error)
	Location() *time.Location
}

type Handler struct {
	generator Generator
	now       func() time.Time
}

func NewHandler(generator Generator) *Handler {
	return &Handler{generator: generator, now: time.Now}
}

/*
Register mounts the routes on e. The report routes get the given middlewares
(token gate, rate limit); the health check stays open.

	GET /healthz
	GET /reports/:kind?from=YYYY-MM-DD&to=YYYY-MM-DD&client=&category=
	GET /reports/:kind/summary?...&recipient=&phone=
*/
func (h *Handler) Register(e *echo.Echo, middlewares ...echo.MiddlewareFunc) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	reports := e.Group("/reports", middlewares...)
	reports.GET("/:kind", h.pdf)
	reports.GET("/:kind/summary", h.summary)
}

type errorBody struct {
	Error string `json:"error"`
}

// SummaryResponse is the JSON body of the summary route.
type SummaryResponse struct {
	ReportID     string `json:"report_id"`
	Filename     string `json:"filename"`
	Summary      string `json:"summary"`
	WhatsAppLink string `json:"whatsapp_link,omitempty"`
}

func (h *Handler) pdf(c echo.Context) error {
	req, err := h.request(c)
	if err != nil {
		return respondError(c, err)
	}

	out, err := h.generator.Generate(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Response().Header().Set("X-Report-Id", out.ReportID)
	return c.Blob(http.StatusOK, "application/pdf", out.PDF)
}

func (h *Handler) summary(c echo.Context) error {
	req, err := h.request(c)
	if err != nil {
		return respondError(c, err)
	}
	req.Recipient = c.QueryParam("recipient")

	out, err := h.generator.Summarize(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	response := SummaryResponse{ReportID: out.ReportID, Filename: out.Filename, Summary: out.Summary}
	phone := c.QueryParam("phone")
	if phone == "" && out.Client != nil {
		phone = out.Client.Phone
	}
	if phone != "" {
		response.WhatsAppLink = compose.WhatsAppLink(phone, out.Summary)
	}
	return c.JSON(http.StatusOK, response)
}

// paramError marks a malformed query parameter.
type paramError struct {
	name string
	err  error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.name, e.err)
}

func (e *paramError) Unwrap() error {
	return e.err
}

/*
request reads the route parameters. Dates are whole days in the service's
timezone; a missing "to" means today and a missing "from" the first day of
the month of "to".
*/
func (h *Handler) request(c echo.Context) (reporting.Request, error) {
	kind, err := reporting.ParseKind(c.Param("kind"))
	if err != nil {
		return reporting.Request{}, err
	}

	location := h.generator.Location()
	to := h.now().In(location)
	if raw := strings.TrimSpace(c.QueryParam("to")); raw != "" {
		to, err = time.ParseInLocation("2006-01-02", raw, location)
		if err != nil {
			return reporting.Request{}, &paramError{name: "to", err: err}
		}
	}
	from := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, location)
	if raw := strings.TrimSpace(c.QueryParam("from")); raw != "" {
		from, err = time.ParseInLocation("2006-01-02", raw, location)
		if err != nil {
			return reporting.Request{}, &paramError{name: "from", err: err}
		}
	}

	return reporting.Request{
		Kind:     kind,
		From:     from,
		To:       to,
		ClientID: strings.TrimSpace(c.QueryParam("client")),
		Category: strings.TrimSpace(c.QueryParam("category")),
	}, nil
}

// StatusFor maps report errors to HTTP statuses: bad input is 400, an
// unreachable record store 502, anything else 500.
func StatusFor(err error) int {
	var rangeErr *aggregate.RangeError
	var param *paramError
	var source *aggregate.SourceError
	var assembly *canvas.DocumentAssemblyError

	switch {
	case errors.As(err, &rangeErr), errors.As(err, &param),
		errors.Is(err, reporting.ErrUnknownKind), errors.Is(err, reporting.ErrMissingClient):
		return http.StatusBadRequest
	case errors.Is(err, reporting.ErrUnknownClient):
		return http.StatusNotFound
	case errors.As(err, &source):
		return http.StatusBadGateway
	case errors.As(err, &assembly):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func respondError(c echo.Context, err error) error {
	status := StatusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		tl.Log(tl.Error, palette.Red, "Report request '%s' failed: %s", c.Request().URL.String(), err)
		message = http.StatusText(status)
	} else {
		tl.Log(tl.Warning, palette.Yellow, "Report request '%s' rejected: %s", c.Request().URL.String(), err)
	}
	return c.JSON(status, errorBody{Error: message})
}
