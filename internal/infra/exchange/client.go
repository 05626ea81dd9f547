package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/NasaVasa/reservewatch/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxErrorBody = 4 << 10

type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient builds the exchange API client. rps <= 0 disables throttling.
func NewClient(baseURL string, timeout time.Duration, rps float64, logger *zap.Logger) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		logger:  logger,
	}
}

// FetchReserves reads the rates feed and returns the reserve advertised for each
// target currency. When several pairs name the same target the first pair key in
// lexical order that carries a reserve wins; pairs with a null reserve are skipped.
func (c *Client) FetchReserves(ctx context.Context) (domain.Reserves, error) {
	var payload ratesResponse
	if _, err := c.get(ctx, "rates", c.baseURL+"/rates", &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	reserves := make(domain.Reserves, len(payload))
	for _, key := range keys {
		pair := payload[key]
		target := strings.ToLower(strings.TrimSpace(pair.To))
		if target == "" {
			target = targetFromKey(key)
		}
		if target == "" {
			return nil, fmt.Errorf("%w: pair %q has no target currency", domain.ErrFetchFailed, key)
		}
		if !pair.Reserve.Valid {
			continue
		}
		if pair.Reserve.Decimal.IsNegative() {
			return nil, fmt.Errorf("%w: pair %q has negative reserve", domain.ErrFetchFailed, key)
		}
		if _, seen := reserves[target]; seen {
			continue
		}
		reserves[target] = pair.Reserve.Decimal
	}
	return reserves, nil
}

func (c *Client) GetOrder(ctx context.Context, id, token string) (*domain.Order, error) {
	endpoint := fmt.Sprintf("%s/orders/%s?token=%s", c.baseURL, url.PathEscape(id), url.QueryEscape(token))
	var payload orderResponse
	status, err := c.get(ctx, "order", endpoint, &payload)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	orderID := payload.ID
	if orderID == "" {
		orderID = id
	}
	return &domain.Order{
		ID:           orderID,
		Token:        token,
		FromCurrency: strings.ToLower(payload.From),
		ToCurrency:   strings.ToLower(payload.To),
		AmountFrom:   payload.AmountFrom.OrZero(),
		AmountTo:     payload.AmountTo.OrZero(),
		Status:       domain.OrderStatusCodec.Decode(strings.ToLower(strings.TrimSpace(payload.Status))),
	}, nil
}

// get performs a throttled GET and decodes a 2xx JSON body into out. The
// returned status is 0 when no response was received.
func (c *Client) get(ctx context.Context, operation, endpoint string, out interface{}) (int, error) {
	ctx, span := otel.Tracer("reservewatch/exchange").Start(ctx, "exchange."+operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	request.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.Debug("exchange request start", zap.String("operation", operation))
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("exchange request failed", zap.String("operation", operation), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	defer response.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", response.StatusCode))
	c.logger.Info(
		"exchange request complete",
		zap.String("operation", operation),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		err := statusError(response)
		span.SetStatus(codes.Error, err.Error())
		return response.StatusCode, err
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		span.RecordError(err)
		return response.StatusCode, fmt.Errorf("decode %s response: %w", operation, err)
	}
	return response.StatusCode, nil
}

func statusError(response *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := firstNonEmpty(payload.Message, payload.Error); msg != "" {
			return fmt.Errorf("exchange error: status %d: %s", response.StatusCode, msg)
		}
	}
	return fmt.Errorf("exchange error: status %d", response.StatusCode)
}

func targetFromKey(key string) string {
	separator := strings.LastIndexAny(key, "_-/")
	if separator < 0 || separator == len(key)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(key[separator+1:]))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

var _ domain.ExchangeClient = (*Client)(nil)
