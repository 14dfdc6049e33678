package api

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"deals-dashboard/internal/auth"
	"deals-dashboard/internal/models"
	"deals-dashboard/internal/telemetry"
)

const unknownErrorMessage = "Unknown error while loading deals."

const maxPageSize = 100

//go:embed templates/deals.html
var templatesFS embed.FS

type DealFetcher interface {
	FetchDeals(ctx context.Context, params models.DealsQuery) (models.DealsResponse, error)
}

// RateLimiter is optional; a nil limiter lets every request through.
type RateLimiter interface {
	IsRateLimited(ctx context.Context, key string) bool
}

type Handler struct {
	deals   DealFetcher
	limiter RateLimiter
	format  *Formatter
	page    *template.Template
}

func NewHandler(deals DealFetcher, limiter RateLimiter, format *Formatter) (*Handler, error) {
	page, err := template.ParseFS(templatesFS, "templates/deals.html")
	if err != nil {
		return nil, fmt.Errorf("parse deals template: %w", err)
	}
	return &Handler{
		deals:   deals,
		limiter: limiter,
		format:  format,
		page:    page,
	}, nil
}

type dealRow struct {
	ID            string
	Title         string
	Description   string
	Status        string
	PipelineStage string
	Value         string
	Updated       string
	Associations  string
}

type pageData struct {
	Error      string
	Total      int
	TotalPages int
	Rows       []dealRow
}

// DealsPage renders the deals table. Fetch failures are part of the page and
// still answer 200.
func (h *Handler) DealsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.limiter != nil {
		clientIP := telemetry.ClientIP(r)
		if h.limiter.IsRateLimited(ctx, clientIP) {
			slog.Warn("Rate limit exceeded", "ip", clientIP)
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
	}

	data := pageData{}
	result, err := h.deals.FetchDeals(ctx, parseQuery(r.URL.Query()))
	if err != nil {
		slog.Warn("Deals unavailable",
			"request_id", telemetry.RequestIDFromContext(ctx),
			"viewer", auth.SubjectFromContext(ctx),
			"error", err,
		)
		data.Error = err.Error()
		if data.Error == "" {
			data.Error = unknownErrorMessage
		}
	} else {
		data.Total = result.Total
		data.TotalPages = result.TotalPages
		data.Rows = make([]dealRow, 0, len(result.Items))
		for _, deal := range result.Items {
			data.Rows = append(data.Rows, h.row(deal))
		}
	}

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		slog.Error("Template render error", "request_id", telemetry.RequestIDFromContext(ctx), "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *Handler) row(deal models.Deal) dealRow {
	status := deal.Status
	if status == "" {
		status = "unknown"
	}
	timestamp := deal.UpdatedAt
	if timestamp == "" {
		timestamp = deal.CreatedAt
	}
	return dealRow{
		ID:            deal.ID,
		Title:         deal.Title,
		Description:   deal.Description,
		Status:        status,
		PipelineStage: deal.PipelineStage,
		Value:         h.format.Currency(deal.ValueAmount, deal.ValueCurrency),
		Updated:       h.format.Date(timestamp),
		Associations:  DescribeAssociations(deal),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// parseQuery picks optional list overrides from the page URL. Invalid values
// are dropped so the defaults apply.
func parseQuery(values url.Values) models.DealsQuery {
	var q models.DealsQuery
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	if size, err := strconv.Atoi(values.Get("pageSize")); err == nil && size > 0 && size <= maxPageSize {
		q.PageSize = size
	}
	q.SortField = values.Get("sortField")
	switch dir := models.SortDirection(values.Get("sortDir")); dir {
	case models.SortAsc, models.SortDesc:
		q.SortDir = dir
	}
	return q
}
