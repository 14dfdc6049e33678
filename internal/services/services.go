package services

import (
	"context"
	"log/slog"
	"time"

	"deals-dashboard/internal/config"
	"deals-dashboard/internal/models"
	"deals-dashboard/internal/openmercato"
	"deals-dashboard/internal/telemetry"
)

// DefaultDealsQuery is applied under every caller-supplied query.
var DefaultDealsQuery = models.DealsQuery{
	Page:      1,
	PageSize:  10,
	SortField: "updated_at",
	SortDir:   models.SortDesc,
}

type DealsLister interface {
	ListDeals(ctx context.Context, query models.DealsQuery, editors ...openmercato.RequestEditorFn) (*openmercato.ListDealsResult, error)
}

type DealService struct {
	cfg    *config.Config
	client DealsLister
}

func NewDealService(cfg *config.Config, client DealsLister) *DealService {
	return &DealService{
		cfg:    cfg,
		client: client,
	}
}

// MergeQuery overlays the non-zero fields of params on base.
func MergeQuery(base, params models.DealsQuery) models.DealsQuery {
	merged := base
	if params.Page > 0 {
		merged.Page = params.Page
	}
	if params.PageSize > 0 {
		merged.PageSize = params.PageSize
	}
	if params.SortField != "" {
		merged.SortField = params.SortField
	}
	if params.SortDir != "" {
		merged.SortDir = params.SortDir
	}
	return merged
}

// FetchDeals loads one page of deals. It makes exactly one upstream call, or
// none when the API key is missing. An empty upstream body yields an empty
// page that echoes the requested page and page size.
func (s *DealService) FetchDeals(ctx context.Context, params models.DealsQuery) (models.DealsResponse, error) {
	if s.cfg.APIKey == "" {
		return models.DealsResponse{}, &ConfigurationError{Key: APIKeyEnv, Message: missingAPIKeyMessage}
	}

	query := MergeQuery(DefaultDealsQuery, params)
	requestID := telemetry.RequestIDFromContext(ctx)
	start := time.Now()

	res, err := s.client.ListDeals(ctx, query, openmercato.WithBearerToken(s.cfg.APIKey))
	if err != nil {
		telemetry.ObserveUpstream(telemetry.OutcomeError, time.Since(start))
		slog.Error("Deals fetch failed", "request_id", requestID, "error", err)
		return models.DealsResponse{}, &UpstreamError{Message: upstreamFallbackMessage, Err: err}
	}

	if res.Error != nil {
		telemetry.ObserveUpstream(telemetry.OutcomeError, time.Since(start))
		message := res.Error.Error
		if message == "" {
			message = upstreamFallbackMessage
		}
		slog.Warn("Open Mercato returned an error", "request_id", requestID, "status", res.StatusCode, "detail", res.Error.Error)
		return models.DealsResponse{}, &UpstreamError{Status: res.StatusCode, Message: message}
	}

	if res.Data == nil {
		telemetry.ObserveUpstream(telemetry.OutcomeEmpty, time.Since(start))
		slog.Warn("Open Mercato returned no data", "request_id", requestID, "status", res.StatusCode)
		return emptyResponse(query), nil
	}

	telemetry.ObserveUpstream(telemetry.OutcomeSuccess, time.Since(start))
	data := *res.Data
	if data.Items == nil {
		data.Items = []models.Deal{}
	}
	slog.Info("Deals fetched",
		"request_id", requestID,
		"page", query.Page,
		"items", len(data.Items),
		"total", data.Total,
		"duration", time.Since(start),
	)
	return data, nil
}

func emptyResponse(query models.DealsQuery) models.DealsResponse {
	return models.DealsResponse{
		Items:      []models.Deal{},
		Total:      0,
		TotalPages: 0,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
}
