package retriever

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightadvisor/internal/models"
	"github.com/dharmasatrya/flightadvisor/internal/scraper"
)

type fakeExtractor struct {
	data  string
	err   error
	calls int
	last  scraper.ExtractRequest
}

func (f *fakeExtractor) Extract(_ context.Context, req scraper.ExtractRequest) (json.RawMessage, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.data), nil
}

func testQuery() models.SearchQuery {
	return models.SearchQuery{
		Origin:        "LKO",
		Destination:   "DEL",
		DepartureDate: "2025-03-25",
		Adults:        2,
		CabinClass:    "Premium_Economy",
	}
}

func TestSearchURL(t *testing.T) {
	r := New(&fakeExtractor{}, "https://www.skyscanner.co.in/transport/flights/", zap.NewNop())

	assert.Equal(t,
		"https://www.skyscanner.co.in/transport/flights/lko/del/250325/?adultsv2=2&cabinclass=premium_economy",
		r.SearchURL(testQuery()),
	)
}

func TestRetrieveNormalizesListings(t *testing.T) {
	ext := &fakeExtractor{data: `{"flights":[
		{"airline":"IndiGo","flight_number":"6E 2134","departure_time":"06:15","arrival_time":"07:20","duration":"1h 05m","stops":0,"price":"₹ 4,512"},
		{"airline":"Air India","flight_number":"AI 432","duration":"5h 40m","stops":"1 stop","layovers":["BOM"],"price":"₹ 7,890"}
	]}`}
	r := New(ext, "https://search.test", zap.NewNop())

	result, err := r.Retrieve(context.Background(), testQuery())
	require.NoError(t, err)

	assert.Equal(t, 1, ext.calls)
	assert.Equal(t, []string{r.SearchURL(testQuery())}, ext.last.URLs)
	assert.Contains(t, ext.last.Prompt, "from LKO to DEL on 2025-03-25")
	assert.NotEmpty(t, ext.last.Schema)

	require.Len(t, result.Listings, 2)
	assert.Equal(t, r.SearchURL(testQuery()), result.SearchURL)

	first := result.Listings[0]
	assert.Equal(t, "IndiGo", first.Airline)
	assert.Equal(t, "6E 2134", first.FlightNumber)
	assert.Equal(t, 65, first.Duration.TotalMinutes)
	assert.Equal(t, 0, first.Stops)
	assert.Equal(t, 4512.0, first.Price.Amount)
	assert.Equal(t, "INR", first.Price.Currency)
	assert.Equal(t, "₹ 4,512", first.Price.Formatted)

	second := result.Listings[1]
	assert.Equal(t, 1, second.Stops)
	assert.Equal(t, []string{"BOM"}, second.Layovers)
	assert.Equal(t, 340, second.Duration.TotalMinutes)
}

func TestRetrieveDropsIncompleteListings(t *testing.T) {
	ext := &fakeExtractor{data: `{"flights":[
		{"airline":"IndiGo","price":"100"},
		{"airline":"SpiceJet"},
		{"price":"120"},
		{"airline":"Vistara","price":"Sold out"}
	]}`}
	r := New(ext, "https://search.test", zap.NewNop())

	result, err := r.Retrieve(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)
	assert.Equal(t, "IndiGo", result.Listings[0].Airline)
	assert.Equal(t, 3, result.Dropped)
}

func TestRetrieveNoFlights(t *testing.T) {
	for name, data := range map[string]string{
		"empty list":     `{"flights":[]}`,
		"missing list":   `{"results":[]}`,
		"all incomplete": `{"flights":[{"airline":"IndiGo"}]}`,
		"explicit null":  `{"flights":null}`,
	} {
		t.Run(name, func(t *testing.T) {
			r := New(&fakeExtractor{data: data}, "https://search.test", zap.NewNop())

			result, err := r.Retrieve(context.Background(), testQuery())
			assert.Nil(t, result)
			require.ErrorIs(t, err, models.ErrNoFlightsFound)

			var nf *models.NoFlightsError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, r.SearchURL(testQuery()), nf.SearchURL)
		})
	}
}

func TestRetrievePropagatesExtractorError(t *testing.T) {
	svcErr := models.NewServiceError(models.ServiceScraper, 500, errors.New("boom"))
	r := New(&fakeExtractor{err: svcErr}, "https://search.test", zap.NewNop())

	result, err := r.Retrieve(context.Background(), testQuery())
	assert.Nil(t, result)
	assert.Same(t, svcErr, err)
}

func TestRetrieveMalformedData(t *testing.T) {
	r := New(&fakeExtractor{data: `["not","an","object"]`}, "https://search.test", zap.NewNop())

	_, err := r.Retrieve(context.Background(), testQuery())

	var svcErr *models.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, models.ServiceScraper, svcErr.Service)
}

func TestRetrieveAlwaysRefetches(t *testing.T) {
	ext := &fakeExtractor{data: `{"flights":[{"airline":"IndiGo","price":"100"}]}`}
	r := New(ext, "https://search.test", zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := r.Retrieve(context.Background(), testQuery())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, ext.calls)
}

func TestFlexibleFields(t *testing.T) {
	var resp scrapedResponse
	require.NoError(t, json.Unmarshal([]byte(`{"flights":[
		{"airline":"A","price":4999,"stops":"Non-stop"},
		{"airline":"B","price":"$ 120","stops":"2 stops","flight_number":101},
		{"airline":"C","price":"90","stops":"unknown","layovers":["DXB",""]},
		{"airline":"D","price":"80","stops":null,"layovers":["DOH","IST"]}
	]}`), &resp))
	require.Len(t, resp.Flights, 4)

	a, ok := normalize(resp.Flights[0])
	require.True(t, ok)
	assert.Equal(t, 4999.0, a.Price.Amount)
	assert.Equal(t, 0, a.Stops)

	b, ok := normalize(resp.Flights[1])
	require.True(t, ok)
	assert.Equal(t, 2, b.Stops)
	assert.Equal(t, "101", b.FlightNumber)
	assert.Equal(t, "USD", b.Price.Currency)

	c, ok := normalize(resp.Flights[2])
	require.True(t, ok)
	assert.Equal(t, 1, c.Stops)
	assert.Equal(t, []string{"DXB"}, c.Layovers)

	d, ok := normalize(resp.Flights[3])
	require.True(t, ok)
	assert.Equal(t, 2, d.Stops)
}

func TestParseDurationMinutes(t *testing.T) {
	cases := map[string]int{
		"2h 30m":      150,
		"2h30m":       150,
		"1 hr 5 min":  65,
		"45m":         45,
		"150 minutes": 150,
		"2:05":        125,
		"3 hours":     180,
		"":            0,
		"n/a":         0,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseDurationMinutes(in), in)
	}
}
