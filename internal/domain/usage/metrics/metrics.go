package metrics

// Metrics holds provider API usage for a time period.
type Metrics struct {
	providerRequests int
	tokens           int
	costMillidollars int
}

// New creates a Metrics snapshot.
func New(requests, tokens, costMillidollars int) Metrics {
	return Metrics{providerRequests: requests, tokens: tokens, costMillidollars: costMillidollars}
}

// ProviderRequests returns the number of provider API calls (embedding plus generation).
func (m Metrics) ProviderRequests() int { return m.providerRequests }

// Tokens returns the total tokens consumed.
func (m Metrics) Tokens() int { return m.tokens }

// CostMillidollars returns cost in millidollars (1 USD = 1000).
func (m Metrics) CostMillidollars() int { return m.costMillidollars }
