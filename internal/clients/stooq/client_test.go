package stooq

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Date,Open,High,Low,Close,Volume
2024-01-02,100,102,99,101.5,1000
2024-01-03,101,103,100,102.25,1200
bad line
2024-01-04,102,104,101,not-a-number,900
2024-01-05,103,105,102,104,1100
`

func TestParseCSV(t *testing.T) {
	series, err := ParseCSV(sampleCSV)
	require.NoError(t, err)

	// Malformed and non-numeric lines are skipped
	require.Len(t, series, 3)
	assert.Equal(t, "2024-01-02", series[0].Time)
	assert.Equal(t, 101.5, series[0].Value)
	assert.Equal(t, 104.0, series[2].Value)
}

func TestParseCSV_NotAnExport(t *testing.T) {
	_, err := ParseCSV("<html>Error 404</html>")
	assert.Error(t, err)
}

func TestSymbolVariants(t *testing.T) {
	assert.Equal(t, []string{"MO.US", "MO", "MO.UK", "MO.PT", "MO.LS"}, SymbolVariants("mo"))
	// Already-suffixed symbols skip the .US prepend
	assert.Equal(t, []string{"EDP.PT", "EDP.PT.UK", "EDP.PT.PT", "EDP.PT.LS"}, SymbolVariants("EDP.PT"))
}

func TestFetchDaily_TriesVariantsUntilUsable(t *testing.T) {
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("s")
		requested = append(requested, symbol)
		if symbol != "tst" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, longCSV(12))
	}))
	defer server.Close()

	client := NewClient(time.Second, zerolog.Nop())
	client.baseURL = server.URL

	series, err := client.FetchDaily(context.Background(), "TST")
	require.NoError(t, err)
	assert.Len(t, series, 12)
	// .US variant failed first, raw symbol succeeded
	assert.Equal(t, []string{"tst.us", "tst"}, requested)
}

func TestFetchDaily_AllVariantsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(time.Second, zerolog.Nop())
	client.baseURL = server.URL

	_, err := client.FetchDaily(context.Background(), "NOPE")
	require.Error(t, err)
	assert.ErrorContains(t, err, "NOPE")
}

func TestFetchDaily_TooShortHistoryRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, longCSV(3))
	}))
	defer server.Close()

	client := NewClient(time.Second, zerolog.Nop())
	client.baseURL = server.URL

	_, err := client.FetchDaily(context.Background(), "TST")
	assert.Error(t, err)
}

func longCSV(points int) string {
	out := "Date,Open,High,Low,Close,Volume\n"
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < points; i++ {
		date := base.AddDate(0, 0, i).Format("2006-01-02")
		out += fmt.Sprintf("%s,100,101,99,%d,1000\n", date, 100+i)
	}
	return out
}
