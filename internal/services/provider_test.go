package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func TestYahooChartFallbackFields(t *testing.T) {
	// regularMarketPrice missing, previousClose present
	srv := jsonServer(t, http.StatusOK,
		`{"chart":{"result":[{"meta":{"previousClose":171.2}}]}}`)
	defer srv.Close()

	p := NewYahooChartProvider("yahoo-chart-1", srv.URL, 2*time.Second)
	price, err := p.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 171.2, mustFloat(t, price))
}

func TestYahooChartEmptyResult(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"chart":{"result":[]}}`)
	defer srv.Close()

	p := NewYahooChartProvider("yahoo-chart-1", srv.URL, 2*time.Second)
	_, err := p.FetchQuote(context.Background(), "AAPL")
	require.Error(t, err)
}

func TestYahooChartRejectsNonPositive(t *testing.T) {
	srv := jsonServer(t, http.StatusOK,
		`{"chart":{"result":[{"meta":{"regularMarketPrice":0}}]}}`)
	defer srv.Close()

	p := NewYahooChartProvider("yahoo-chart-1", srv.URL, 2*time.Second)
	_, err := p.FetchQuote(context.Background(), "AAPL")
	require.Error(t, err)
}

func TestYahooQuoteSummaryRawFields(t *testing.T) {
	srv := jsonServer(t, http.StatusOK,
		`{"quoteSummary":{"result":[{"price":{"currentPrice":{"raw":42.5}}}]}}`)
	defer srv.Close()

	p := NewYahooQuoteSummaryProvider("yahoo-summary", srv.URL, 2*time.Second)
	price, err := p.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 42.5, mustFloat(t, price))
}

func TestYahooQuoteSummaryRateLimited(t *testing.T) {
	srv := jsonServer(t, http.StatusTooManyRequests, `{}`)
	defer srv.Close()

	p := NewYahooQuoteSummaryProvider("yahoo-summary", srv.URL, 2*time.Second)
	_, err := p.FetchQuote(context.Background(), "AAPL")
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestTimeseriesParsers(t *testing.T) {
	cases := []struct {
		name string
		data map[string]interface{}
		want float64
		ok   bool
	}{
		{
			name: "flat regularMarketPrice",
			data: map[string]interface{}{
				"price": map[string]interface{}{"regularMarketPrice": 150.5},
			},
			want: 150.5, ok: true,
		},
		{
			name: "nested raw currentPrice",
			data: map[string]interface{}{
				"price": map[string]interface{}{
					"currentPrice": map[string]interface{}{"raw": 99.25},
				},
			},
			want: 99.25, ok: true,
		},
		{
			name: "timeseries close array takes last non-null",
			data: map[string]interface{}{
				"timeseries": map[string]interface{}{
					"result": []interface{}{
						map[string]interface{}{
							"indicators": map[string]interface{}{
								"quote": []interface{}{
									map[string]interface{}{
										"close": []interface{}{10.0, 11.0, nil},
									},
								},
							},
						},
					},
				},
			},
			want: 11.0, ok: true,
		},
		{
			name: "quoteSummary embedded price",
			data: map[string]interface{}{
				"quoteSummary": map[string]interface{}{
					"result": []interface{}{
						map[string]interface{}{
							"price": map[string]interface{}{
								"regularMarketPrice": map[string]interface{}{"raw": 77.0},
							},
						},
					},
				},
			},
			want: 77.0, ok: true,
		},
		{
			name: "no known shape",
			data: map[string]interface{}{"unexpected": true},
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got float64
			found := false
			for _, parse := range timeseriesParsers {
				if v, ok := parse(tc.data); ok {
					got, found = v, true
					break
				}
			}
			require.Equal(t, tc.ok, found)
			if tc.ok {
				require.Equal(t, tc.want, got)
			}
		})
	}
}

func TestRapidAPIProviderEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.Header.Get("x-rapidapi-host"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"price":{"regularMarketPrice":{"raw":123.45}}}`)
	}))
	defer srv.Close()

	p := NewRapidAPIProvider("example.test", "key", 2*time.Second)
	p.baseURL = srv.URL
	price, err := p.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 123.45, mustFloat(t, price))
}

func TestRapidAPIRateLimited(t *testing.T) {
	srv := jsonServer(t, http.StatusTooManyRequests, `{}`)
	defer srv.Close()

	p := NewRapidAPIProvider("example.test", "key", 2*time.Second)
	p.baseURL = srv.URL
	_, err := p.FetchQuote(context.Background(), "AAPL")
	require.ErrorIs(t, err, ErrRateLimited)
}

func newAutoCompleteForTest(srv *httptest.Server) *AutoCompleteProvider {
	p := NewAutoCompleteProvider("example.test", "key", 2*time.Second)
	p.baseURL = srv.URL
	return p
}

func TestCoinGeckoMissingID(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{}`)
	defer srv.Close()

	p := NewCoinGeckoProvider(srv.URL, 2*time.Second)
	_, err := p.FetchQuote(context.Background(), "unknowncoin")
	require.Error(t, err)
}

func TestAutoCompleteParsesQuotes(t *testing.T) {
	body := `{"quotes":[
		{"symbol":"AAPL","shortname":"Apple","longname":"Apple Inc.","quoteType":"EQUITY"},
		{"symbol":"AAPL240119C00050000","quoteType":"OPTION"}
	]}`
	srv := jsonServer(t, http.StatusOK, body)
	defer srv.Close()

	p := newAutoCompleteForTest(srv)
	matches, err := p.Search(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "AAPL", matches[0].Symbol)
	require.Equal(t, "Apple Inc.", matches[0].Name)
}

func TestAutoCompleteParsesDataShape(t *testing.T) {
	body := `{"data":[{"symbol":"TSLA","name":"Tesla, Inc."}]}`
	srv := jsonServer(t, http.StatusOK, body)
	defer srv.Close()

	p := newAutoCompleteForTest(srv)
	matches, err := p.Search(context.Background(), "TSLA")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "Tesla, Inc.", matches[0].Name)
}

func TestAutoCompleteRateLimited(t *testing.T) {
	srv := jsonServer(t, http.StatusTooManyRequests, `{}`)
	defer srv.Close()

	p := newAutoCompleteForTest(srv)
	_, err := p.Search(context.Background(), "AAPL")
	require.ErrorIs(t, err, ErrRateLimited)
}
