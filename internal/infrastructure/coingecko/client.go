package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/bimakw/fumble-tracker/internal/config"
	"github.com/bimakw/fumble-tracker/internal/domain/entities"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// historyDateLayout is the dd-mm-yyyy form the /history endpoint expects
const historyDateLayout = "02-01-2006"

const defaultTimeout = 10 * time.Second

// Client fetches prices from the CoinGecko API. One attempt per call, no retries.
type Client struct {
	client     *fasthttp.Client
	baseURL    string
	apiKey     string
	vsCurrency string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient creates a new CoinGecko API client
func NewClient(cfg config.PriceConfig, logger *zap.Logger) *Client {
	vs := strings.ToLower(cfg.VsCurrency)
	if vs == "" {
		vs = "usd"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		client:     &fasthttp.Client{Name: "fumble-tracker"},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		vsCurrency: vs,
		timeout:    timeout,
		logger:     logger.Named("coingecko"),
	}
}

type historyResponse struct {
	MarketData *struct {
		CurrentPrice map[string]decimal.Decimal `json:"current_price"`
	} `json:"market_data"`
}

// HistoricalPrice returns the price of coinID on the UTC calendar day of day
func (c *Client) HistoricalPrice(ctx context.Context, coinID string, day time.Time) (decimal.Decimal, error) {
	date := day.UTC().Format(historyDateLayout)

	q := url.Values{}
	q.Set("date", date)
	q.Set("localization", "false")
	requestURL := fmt.Sprintf("%s/coins/%s/history?%s", c.baseURL, url.PathEscape(coinID), q.Encode())

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return decimal.Zero, err
	}

	var resp historyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode history response: %w", err)
	}

	if resp.MarketData == nil {
		return decimal.Zero, fmt.Errorf("%w: no market data for %s on %s", entities.ErrPriceUnavailable, coinID, date)
	}
	price, ok := resp.MarketData.CurrentPrice[c.vsCurrency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no %s price for %s on %s", entities.ErrPriceUnavailable, c.vsCurrency, coinID, date)
	}

	c.logger.Debug("Historical price",
		zap.String("coin_id", coinID),
		zap.String("date", date),
		zap.String("price", price.String()),
	)
	return price, nil
}

// CurrentPrice returns the latest price of coinID
func (c *Client) CurrentPrice(ctx context.Context, coinID string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("ids", coinID)
	q.Set("vs_currencies", c.vsCurrency)
	requestURL := fmt.Sprintf("%s/simple/price?%s", c.baseURL, q.Encode())

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return decimal.Zero, err
	}

	// {"solana":{"usd":25.1}}
	var resp map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode simple price response: %w", err)
	}

	price, ok := resp[coinID][c.vsCurrency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no %s price for %s", entities.ErrPriceUnavailable, c.vsCurrency, coinID)
	}

	c.logger.Debug("Current price",
		zap.String("coin_id", coinID),
		zap.String("price", price.String()),
	)
	return price, nil
}

// CoinIDByContract resolves a token contract address on platform to a CoinGecko coin id
func (c *Client) CoinIDByContract(ctx context.Context, platform, contract string) (string, error) {
	requestURL := fmt.Sprintf("%s/coins/%s/contract/%s", c.baseURL, url.PathEscape(platform), url.PathEscape(contract))

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return "", err
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode contract response: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: no coin id for contract %s", entities.ErrPriceUnavailable, contract)
	}
	return resp.ID, nil
}

// get performs a single GET request bounded by the context deadline or the client timeout
func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", requestURL, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("CoinGecko HTTP %d from %s", resp.StatusCode(), requestURL)
	}

	// resp is released on return, so copy the body out
	body := append([]byte(nil), resp.Body()...)
	return body, nil
}
