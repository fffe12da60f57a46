package harness

// TranscriptTurn is the observable outcome of one turn.
type TranscriptTurn struct {
	Turn             int               `json:"turn"`
	Intent           string            `json:"intent"`
	Transition       string            `json:"transition"`
	Action           string            `json:"action"`
	Message          string            `json:"message,omitempty"`
	SlotToElicit     string            `json:"slot_to_elicit,omitempty"`
	FulfillmentState string            `json:"fulfillment_state,omitempty"`
	Attributes       map[string]string `json:"attributes"`
	CodesSent        []string          `json:"codes_sent,omitempty"`
	Checkout         []string          `json:"checkout,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses match.
	Pass bool `json:"pass"`

	// Transcript contains every turn in order.
	// Used for golden comparison.
	Transcript []TranscriptTurn `json:"transcript"`

	// Errors contains expectation mismatches.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Transcript: []TranscriptTurn{},
		Errors:     []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTurn appends a turn to the transcript.
func (r *Result) AddTurn(t TranscriptTurn) {
	r.Transcript = append(r.Transcript, t)
}
