package fleetapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/pkg/metrics"
	"github.com/samirrijal/vertiwatch/internal/pkg/telemetry"
)

// Backend endpoints and the key wrapping each list in the response body.
const (
	EndpointTeams              = "getTeams"
	EndpointVertiports         = "getVertiportLocations"
	EndpointUnassignedRequests = "getUnassignedRequests"
	EndpointAssignedRequests   = "getAssignedRequests"
	EndpointDroneInfo          = "getDroneInfo"
	EndpointRequestCounts      = "getRequestCounts"
)

var (
	// ErrStatus is returned for any non-200 response.
	ErrStatus = errors.New("unexpected status")
	// ErrMissingKey is returned when the wrapper key is absent from the body.
	ErrMissingKey = errors.New("missing response key")
)

const defaultTimeout = 2 * time.Second

// Client implements ports.FleetAPI over plain HTTP GETs.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
}

// New creates a Client for the backend rooted at baseURL. Every GET is
// bounded by timeout as well as by the caller's context deadline.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "vertiwatch",
			MaxConnsPerHost:     32,
			MaxIdleConnDuration: 30 * time.Second,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
	}
}

func (c *Client) Teams(ctx context.Context) ([]domain.Team, error) {
	var out []domain.Team
	err := c.getList(ctx, EndpointTeams, "teams", &out)
	return out, err
}

func (c *Client) Vertiports(ctx context.Context) ([]domain.Vertiport, error) {
	var out []domain.Vertiport
	err := c.getList(ctx, EndpointVertiports, "ports", &out)
	return out, err
}

func (c *Client) UnassignedRequests(ctx context.Context) ([]domain.RideRequest, error) {
	var out []domain.RideRequest
	err := c.getList(ctx, EndpointUnassignedRequests, "requests", &out)
	return out, err
}

func (c *Client) AssignedRequests(ctx context.Context) ([]domain.RideRequest, error) {
	var out []domain.RideRequest
	err := c.getList(ctx, EndpointAssignedRequests, "requests", &out)
	return out, err
}

func (c *Client) DroneStates(ctx context.Context) ([]domain.DroneState, error) {
	var out []domain.DroneState
	err := c.getList(ctx, EndpointDroneInfo, "states", &out)
	return out, err
}

func (c *Client) RequestCounts(ctx context.Context) ([]domain.RequestCount, error) {
	var out []domain.RequestCount
	err := c.getList(ctx, EndpointRequestCounts, "counts", &out)
	return out, err
}

// getList GETs an endpoint and decodes the list under key into dst.
// A null list decodes to nil.
func (c *Client) getList(ctx context.Context, endpoint, key string, dst any) (err error) {
	ctx, span := otel.Tracer(telemetry.TracerFleetAPI).Start(ctx, telemetry.SpanFleetGet)
	span.SetAttributes(attribute.String(telemetry.AttrFleetEndpoint, endpoint))
	start := time.Now()
	defer func() {
		metrics.FleetRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.FleetRequestErrors.WithLabelValues(endpoint).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, status, err := c.get(ctx, endpoint)
	span.SetAttributes(attribute.Int(telemetry.AttrHTTPStatus, status))
	if err != nil {
		return err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	raw, ok := envelope[key]
	if !ok {
		return fmt.Errorf("decode %s: %w %q", endpoint, ErrMissingKey, key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s.%s: %w", endpoint, key, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/" + endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, fmt.Errorf("GET %s: %w", endpoint, err)
	}

	status := resp.StatusCode()
	if status != fasthttp.StatusOK {
		return nil, status, fmt.Errorf("GET %s: %w %d", endpoint, ErrStatus, status)
	}
	// The response is released on return.
	body := append([]byte(nil), resp.Body()...)
	return body, status, nil
}
