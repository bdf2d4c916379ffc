package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/flightadvisor/internal/models"
)

var searchOpts struct {
	origin      string
	destination string
	date        string
	adults      int
	cabin       string
	model       string
	maxPrice    float64
	maxStops    int
	airlines    []string
	priority    string
	jsonOutput  bool
}

var SearchCmd = &cobra.Command{
	Use:     "search",
	Aliases: []string{"s"},
	Short:   "Search flights and print a recommendation",
	Example: `  flightadvisor search --origin LKO --destination DEL --date 2025-03-25
  flightadvisor search -o BOM -d DXB --date 2025-04-02 --adults 2 --cabin business --max-stops 0`,
	RunE: runSearch,
}

func init() {
	f := SearchCmd.Flags()
	f.StringVarP(&searchOpts.origin, "origin", "o", "", "origin IATA code")
	f.StringVarP(&searchOpts.destination, "destination", "d", "", "destination IATA code")
	f.StringVar(&searchOpts.date, "date", "", "departure date (YYYY-MM-DD)")
	f.IntVarP(&searchOpts.adults, "adults", "a", 1, "number of adult travellers (1-10)")
	f.StringVarP(&searchOpts.cabin, "cabin", "c", "economy", "cabin class: economy, premium_economy, business, first")
	f.StringVarP(&searchOpts.model, "model", "m", "", "language model (default from OPENAI_MODEL)")
	f.Float64Var(&searchOpts.maxPrice, "max-price", 0, "only consider flights at or below this price")
	f.IntVar(&searchOpts.maxStops, "max-stops", -1, "only consider flights with at most this many stops")
	f.StringSliceVar(&searchOpts.airlines, "airline", nil, "preferred airlines (repeatable)")
	f.StringVar(&searchOpts.priority, "priority", "", "ordering priority: price, duration, stops, best_value")
	f.BoolVar(&searchOpts.jsonOutput, "json", false, "print the full result as JSON")

	SearchCmd.MarkFlagRequired("origin")
	SearchCmd.MarkFlagRequired("destination")
	SearchCmd.MarkFlagRequired("date")
}

func searchQuery() models.SearchQuery {
	q := models.SearchQuery{
		Origin:        searchOpts.origin,
		Destination:   searchOpts.destination,
		DepartureDate: searchOpts.date,
		Adults:        searchOpts.adults,
		CabinClass:    searchOpts.cabin,
		Model:         searchOpts.model,
	}

	prefs := &models.Preferences{
		Airlines: searchOpts.airlines,
		Priority: searchOpts.priority,
	}
	if searchOpts.maxPrice > 0 {
		maxPrice := searchOpts.maxPrice
		prefs.MaxPrice = &maxPrice
	}
	if searchOpts.maxStops >= 0 {
		maxStops := searchOpts.maxStops
		prefs.MaxStops = &maxStops
	}
	if !prefs.IsZero() {
		q.Preferences = prefs
	}
	return q
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, zl, err := loadConfig()
	if err != nil {
		return err
	}
	defer zl.Sync()

	q := searchQuery()
	if err := q.Validate(); err != nil {
		return err
	}

	a, err := newBuilder(cfg, zl).Build(models.Credentials{}, q.Model)
	if err != nil {
		if errors.Is(err, models.ErrMissingCredentials) {
			return fmt.Errorf("%w: set FIRECRAWL_API_KEY and OPENAI_API_KEY or pass --firecrawl-key and --openai-key", err)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(cmd.ErrOrStderr(), "Searching flights %s -> %s on %s...\n", q.Origin, q.Destination, q.DepartureDate)

	rec, err := a.Recommend(ctx, q)
	if err != nil {
		var nf *models.NoFlightsError
		if errors.As(err, &nf) {
			fmt.Fprintf(out, "No flights found. Check the search page: %s\n", nf.SearchURL)
		}
		return err
	}

	if searchOpts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	fmt.Fprintln(out, rec.Text)
	return nil
}
