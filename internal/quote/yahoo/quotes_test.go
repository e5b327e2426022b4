package yahoo_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stockfolio/internal/quote"
	"stockfolio/internal/quote/yahoo"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestFetch_BatchedRequestShape(t *testing.T) {
	t.Parallel()

	// Arrange: a mock http client asserting the request URL.
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.True(t, strings.Contains(req.URL.Path, "/v7/finance/quote"), "unexpected path: %s", req.URL.Path)
			require.Equal(t, "AAPL,MSFT", req.URL.Query().Get("symbols"))
			return jsonResponse(http.StatusOK, `{"quoteResponse":{"result":[],"error":null}}`), nil
		}).
		Times(1)

	client := yahoo.New(yahoo.WithHTTPClient(httpClient))

	// Act: one call covers the full symbol list.
	out, err := client.Fetch(t.Context(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestFetch_ReducesRecords(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	body := `{"quoteResponse":{"result":[
		{"symbol":"aapl","shortName":"Apple Inc.","longName":"Apple Incorporated","regularMarketPrice":200.5,"regularMarketPreviousClose":198.25,"currency":"USD"},
		{"symbol":"NONAME","regularMarketPrice":10},
		{"symbol":"LONGONLY","longName":"Long Only Corp"}
	],"error":null}}`
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, body), nil).
		Times(1)

	client := yahoo.New(yahoo.WithHTTPClient(httpClient))
	out, err := client.Fetch(t.Context(), []string{"AAPL", "NONAME", "LONGONLY"})
	require.NoError(t, err)
	require.Len(t, out, 3)

	// Symbols uppercased; short name preferred.
	require.Equal(t, "AAPL", out[0].Symbol)
	require.Equal(t, "Apple Inc.", out[0].Name)
	require.NotNil(t, out[0].Price)
	require.Equal(t, 200.5, *out[0].Price)
	require.NotNil(t, out[0].PreviousClose)
	require.Equal(t, 198.25, *out[0].PreviousClose)
	require.NotNil(t, out[0].Currency)
	require.Equal(t, "USD", *out[0].Currency)

	// No names at all: name falls back to the symbol; absent numerics stay nil.
	require.Equal(t, "NONAME", out[1].Name)
	require.Nil(t, out[1].PreviousClose)
	require.Nil(t, out[1].Currency)

	// Long name used when short name is missing.
	require.Equal(t, "Long Only Corp", out[2].Name)
	require.Nil(t, out[2].Price)
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusServiceUnavailable, `upstream having a bad day`), nil).
		Times(1)

	client := yahoo.New(yahoo.WithHTTPClient(httpClient))
	_, err := client.Fetch(t.Context(), []string{"AAPL"})

	var ue *quote.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, http.StatusServiceUnavailable, ue.Status)
}

func TestFetch_TransportAndDecodeFailures(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(nil, errors.New("connection refused")).
		Times(1)

	client := yahoo.New(yahoo.WithHTTPClient(httpClient))
	_, err := client.Fetch(t.Context(), []string{"AAPL"})
	require.Error(t, err)
	var ue *quote.UpstreamError
	require.False(t, errors.As(err, &ue), "transport failure must not classify as upstream status")

	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `<html>not json</html>`), nil).
		Times(1)
	_, err = client.Fetch(t.Context(), []string{"AAPL"})
	require.ErrorContains(t, err, "decoding quote response")
}

func TestWithBaseURL(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	baseURL := "http://localhost:8080"
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), baseURL), "expected url to start with base url, received: %s", req.URL.String())
			return jsonResponse(http.StatusOK, `{"quoteResponse":{"result":[],"error":null}}`), nil
		}).
		Times(1)

	client := yahoo.New(yahoo.WithHTTPClient(httpClient), yahoo.WithBaseURL(baseURL))
	_, err := client.Fetch(t.Context(), []string{"AAPL"})
	require.NoError(t, err)
}

func TestWithHeader(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "stockfolio/1.0", req.Header.Get("User-Agent"))
			return jsonResponse(http.StatusOK, `{"quoteResponse":{"result":[],"error":null}}`), nil
		}).
		Times(1)

	client := yahoo.New(yahoo.WithHTTPClient(httpClient), yahoo.WithHeader(http.Header{
		"User-Agent": []string{"stockfolio/1.0"},
	}))
	_, err := client.Fetch(t.Context(), []string{"AAPL"})
	require.NoError(t, err)
}

func TestFetchRaw(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	payload := `{"quoteResponse":{"result":[{"symbol":"AAPL"}],"error":null}}`
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, payload), nil).
		Times(1)

	client := yahoo.New(yahoo.WithHTTPClient(httpClient))
	raw, err := client.FetchRaw(t.Context(), []string{"AAPL"})
	require.NoError(t, err)
	require.JSONEq(t, payload, string(raw))
}
