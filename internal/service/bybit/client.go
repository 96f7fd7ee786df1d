package bybit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"volscan/internal/domain/models"
	drepo "volscan/internal/domain/repository"
	xhttp "volscan/pkg/http"
)

// Client implements a MarketSource backed by the Bybit v5 REST API.
type Client struct {
	http        *xhttp.Client
	baseURL     string
	category    string
	quoteSuffix string
}

// New creates a Bybit MarketSource for instruments of the given category
// whose symbol ends with quoteSuffix (e.g. "USDT").
func New(baseURL, category, quoteSuffix string, timeout time.Duration) drepo.MarketSource {
	return &Client{
		http:        xhttp.NewClient(xhttp.WithTimeout(timeout)),
		baseURL:     strings.TrimRight(baseURL, "/"),
		category:    category,
		quoteSuffix: quoteSuffix,
	}
}

type tickerEntry struct {
	Symbol      string `json:"symbol"`
	LastPrice   string `json:"lastPrice"`
	Turnover24h string `json:"turnover24h"`
	FundingRate string `json:"fundingRate"`
}

type tickersResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []tickerEntry `json:"list"`
	} `json:"result"`
}

// FetchTickers performs one GET /v5/market/tickers round trip and returns
// the snapshot for all accepted symbols. Numeric fields arrive as strings;
// an accepted entry with an unparsable price or turnover makes the whole
// snapshot malformed rather than silently skewing the ranking.
func (c *Client) FetchTickers(ctx context.Context) ([]models.Ticker, error) {
	var resp tickersResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/v5/market/tickers",
		QueryParams: map[string][]string{"category": {c.category}},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("bybit tickers: %w", err)
	}

	if resp.RetCode != 0 {
		return nil, fmt.Errorf("bybit tickers: retCode %d: %s", resp.RetCode, resp.RetMsg)
	}
	if len(resp.Result.List) == 0 {
		return nil, fmt.Errorf("bybit tickers: empty list: %w", ErrMalformedResponse)
	}

	out := make([]models.Ticker, 0, len(resp.Result.List))
	for _, e := range resp.Result.List {
		if !strings.HasSuffix(e.Symbol, c.quoteSuffix) {
			continue
		}
		price, err := strconv.ParseFloat(e.LastPrice, 64)
		if err != nil {
			return nil, fmt.Errorf("bybit tickers: %s lastPrice %q: %w", e.Symbol, e.LastPrice, ErrMalformedResponse)
		}
		turnover, err := strconv.ParseFloat(e.Turnover24h, 64)
		if err != nil {
			return nil, fmt.Errorf("bybit tickers: %s turnover24h %q: %w", e.Symbol, e.Turnover24h, ErrMalformedResponse)
		}
		// funding is supplementary; some instruments report it empty
		funding := 0.0
		if e.FundingRate != "" {
			if f, err := strconv.ParseFloat(e.FundingRate, 64); err == nil {
				funding = f
			}
		}
		out = append(out, models.Ticker{
			Symbol:      e.Symbol,
			LastPrice:   price,
			Turnover24h: turnover,
			FundingRate: funding,
		})
	}
	return out, nil
}
