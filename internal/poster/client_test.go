package poster

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/cohort/internal/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New("test-token",
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRateLimiter(nil),
	)
	return client, server
}

func TestGetClientsDecodesList(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clients.getClients", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))

		fmt.Fprint(w, `{"response": [
			{"client_id": "1", "date_activale": "2024-01-10 09:00:00"},
			{"client_id": "2", "date_activale": "2024-01-20 10:30:00"}
		]}`)
	}))

	clients, err := client.GetClients(context.Background())
	require.NoError(t, err)

	require.Len(t, clients, 2)
	assert.Equal(t, int64(1), clients[0].ID)
	assert.Equal(t, time.Date(2024, 1, 20, 10, 30, 0, 0, time.UTC), clients[1].ActivatedAt)
}

func TestGetClientExpectsSingleRecord(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clients.getClient", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("client_id"))
		fmt.Fprint(w, `{"response": [{"client_id": 42, "date_activale": "2024-02-01 08:00:00"}]}`)
	}))

	cl, err := client.GetClient(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cl.ID)
}

func TestGetClientRejectsMultipleRecords(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response": [
			{"client_id": 1, "date_activale": "2024-02-01 08:00:00"},
			{"client_id": 2, "date_activale": "2024-02-02 08:00:00"}
		]}`)
	}))

	_, err := client.GetClient(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsMalformedResponseError(err))
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": 32, "message": "wrong token"}`)
	}))

	_, err := client.GetClients(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 32, apiErr.Code)
	assert.Equal(t, "wrong token", apiErr.Message)
}

func TestUnrecognizedEnvelopeIsMalformed(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"unexpected": true}`)
	}))

	_, err := client.GetClients(context.Background())
	require.Error(t, err)
	assert.True(t, IsMalformedResponseError(err))
}

func TestTransportErrorQuotesBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "backend exploded")
	}))

	_, err := client.GetClients(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "backend exploded")
}

func TestTooManyRequestsIsRateLimitError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.GetClients(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsRateLimitError(err))
}

func TestGetTransactionsPagePassesQuery(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/transactions.getTransactions", r.URL.Path)
		assert.Equal(t, "2024-01-01", q.Get("date_from"))
		assert.Equal(t, "2024-02-01", q.Get("date_to"))
		assert.Equal(t, "3", q.Get("page"))
		assert.Equal(t, "50", q.Get("per_page"))

		fmt.Fprint(w, `{"response": {
			"data": [{"transaction_id": 9, "client_id": 3, "date_close": "2024-01-05 12:00:00"}],
			"page": {"count": 1, "page": 3, "per_page": 50}
		}}`)
	}))

	page, err := client.GetTransactionsPage(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		3, 50)
	require.NoError(t, err)

	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(9), page.Data[0].ID)
	assert.Equal(t, 3, page.Page.Page)
}

// pagedHandler serves deterministic transaction pages: full pages up to
// lastPage-1, then a short final page.
func pagedHandler(t *testing.T, perPage, lastPage, lastPageCount int, requested *[]int) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)
		*requested = append(*requested, page)

		count := perPage
		if page >= lastPage {
			count = lastPageCount
		}

		fmt.Fprintf(w, `{"response": {"data": [`)
		for i := 0; i < count; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			id := (page-1)*perPage + i + 1
			fmt.Fprintf(w, `{"transaction_id": %d, "client_id": %d, "date_close": "2024-01-02 10:00:00"}`, id, id)
		}
		fmt.Fprintf(w, `], "page": {"count": %d, "page": %d, "per_page": %d}}}`, count, page, perPage)
	})
}

func TestTransactionIterStopsOnShortPage(t *testing.T) {
	var requested []int
	client, _ := newTestClient(t, pagedHandler(t, 2, 3, 1, &requested))

	it := client.Transactions(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		2)

	var ids []int64
	for it.Next() {
		ids = append(ids, it.Tx().ID)
	}
	require.NoError(t, it.Err())

	// Pages 1 and 2 are full, page 3 is short: exactly three requests,
	// in order, and five records.
	assert.Equal(t, []int{1, 2, 3}, requested)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
}

func TestTransactionIterUsesEchoedPerPage(t *testing.T) {
	// The server clamps per_page to 2 and echoes that back. A page of 2
	// records must not terminate the walk just because the caller asked
	// for 10 per page.
	var requested []int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)
		requested = append(requested, page)

		if page == 1 {
			fmt.Fprint(w, `{"response": {
				"data": [
					{"transaction_id": 1, "client_id": 1, "date_close": "2024-01-02 10:00:00"},
					{"transaction_id": 2, "client_id": 2, "date_close": "2024-01-02 11:00:00"}
				],
				"page": {"count": 2, "page": 1, "per_page": 2}
			}}`)
			return
		}
		fmt.Fprint(w, `{"response": {"data": [], "page": {"count": 0, "page": 2, "per_page": 2}}}`)
	}))

	txs, err := client.Transactions(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		10).Collect()
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, requested)
	assert.Len(t, txs, 2)
}

func TestTransactionsFromStartsAtGivenPage(t *testing.T) {
	var requested []int
	client, _ := newTestClient(t, pagedHandler(t, 2, 4, 1, &requested))

	txs, err := client.TransactionsFrom(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		3, 2).Collect()
	require.NoError(t, err)

	assert.Equal(t, []int{3, 4}, requested)
	assert.Len(t, txs, 3)
}

func TestTransactionIterPropagatesFetchError(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"response": {
				"data": [
					{"transaction_id": 1, "client_id": 1, "date_close": "2024-01-02 10:00:00"},
					{"transaction_id": 2, "client_id": 2, "date_close": "2024-01-02 11:00:00"}
				],
				"page": {"count": 2, "page": 1, "per_page": 2}
			}}`)
			return
		}
		fmt.Fprint(w, `{"error": 101, "message": "access denied"}`)
	}))

	it := client.Transactions(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		2)

	var seen int
	for it.Next() {
		seen++
	}

	assert.Equal(t, 2, seen)
	require.Error(t, it.Err())
	assert.True(t, IsAPIError(it.Err()))
}

func TestGetInfoUnwrapsEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/application.getInfo", r.URL.Path)
		fmt.Fprint(w, `{"response": {"company_name": "Test Cafe"}}`)
	}))

	info, err := client.GetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Test Cafe", info["company_name"])
}
