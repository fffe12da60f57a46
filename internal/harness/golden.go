package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/craftbeerbot/internal/dialog"
)

// Golden files live in testdata/golden/{scenario.Name}.golden.
const (
	GoldenDir    = "testdata/golden"
	GoldenSuffix = ".golden"
)

// toCanonicalMap converts a transcript to a map[string]any for canonical JSON
// serialization. Empty optional fields are omitted.
func toCanonicalMap(name string, transcript []TranscriptTurn) map[string]any {
	turns := make([]any, len(transcript))
	for i, t := range transcript {
		m := map[string]any{
			"turn":       t.Turn,
			"intent":     t.Intent,
			"transition": t.Transition,
			"action":     t.Action,
			"attributes": t.Attributes,
		}
		if t.Message != "" {
			m["message"] = t.Message
		}
		if t.SlotToElicit != "" {
			m["slot_to_elicit"] = t.SlotToElicit
		}
		if t.FulfillmentState != "" {
			m["fulfillment_state"] = t.FulfillmentState
		}
		if len(t.CodesSent) > 0 {
			m["codes_sent"] = t.CodesSent
		}
		if len(t.Checkout) > 0 {
			m["checkout"] = t.Checkout
		}
		turns[i] = m
	}
	return map[string]any{
		"scenario": name,
		"turns":    turns,
	}
}

// MarshalTranscript renders a result's transcript as canonical JSON.
// This is the exact content of a golden file.
func MarshalTranscript(name string, result *Result) ([]byte, error) {
	return dialog.MarshalCanonical(toCanonicalMap(name, result.Transcript))
}

// RunWithGolden executes a scenario and compares the transcript against a
// golden file.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the transcript doesn't match the golden
// file or any expect clause fails.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		t.Error(e)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's transcript against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalTranscript(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(GoldenSuffix),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
