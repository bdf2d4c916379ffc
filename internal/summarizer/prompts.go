package summarizer

import (
	"strings"
	"text/template"
)

const systemPrompt = `You are a flight booking expert helping users find and analyze flights.
Answer in Markdown. Only use the flight data you are given; do not invent flights, prices or airlines.`

// analysisTemplate renders the user prompt. Listings keep the order the
// search site presented them in.
const analysisTemplate = `✈️ **Best Flights from {{.Origin}} to {{.Destination}}** on {{.Date}} ({{.Adults}} adult{{if ne .Adults 1}}s{{end}}, {{.CabinClass}})

| # | Airline | Flight | Departure | Arrival | Duration | Stops | Layovers | Price | Value score |
|---|---------|--------|-----------|---------|----------|-------|----------|-------|-------------|
{{range $i, $f := .Listings}}| {{inc $i}} | {{$f.Airline}} | {{or $f.FlightNumber "-"}} | {{or $f.DepartureTime "-"}} | {{or $f.ArrivalTime "-"}} | {{or $f.Duration.Text "-"}} | {{$f.Stops}} | {{join $f.Layovers}} | {{$f.Price.Formatted}} | {{printf "%.2f" $f.BestValueScore}} |
{{end}}
Value score weighs price, duration and stops; lower is better.
{{if .Preferences}}
🧭 **Traveller preferences**
{{range .Preferences}}- {{.}}
{{end}}{{end}}
💰 **Price Comparison**
- Compare flights based on ticket price, travel time, and layovers.

🔥 **Best Value Picks**
- Highlight 3 best flights based on cost, convenience, and airline service.

🎯 **Booking Recommendations**
- When to book for the best price?
- Which airline offers the best experience?

**🔗 Check all flights here:** [Skyscanner Link]({{.SearchURL}})
`

var analysisPrompt = template.Must(template.New("analysis").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"join": func(items []string) string {
		if len(items) == 0 {
			return "-"
		}
		return strings.Join(items, ", ")
	},
}).Parse(analysisTemplate))
