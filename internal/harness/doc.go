// Package harness runs multi-turn conversation scenarios against the bot.
//
// A scenario plays the part of the dialog platform: it sends Lex events turn
// by turn, threading the session attributes from each response into the next
// event, and checks what comes back.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: happy_path
//	description: "Order one beer and confirm with the texted code"
//	channel: sms
//	codes: [4821]
//	checkout_fails: ""
//	notify_fails: false
//	turns:
//	  - intent: OrderCraftBeer
//	    slots: { CraftBeer: "Yenda IPA" }
//	    expect:
//	      action: ConfirmIntent
//	      attributes: { beers: '[{"id":179,"name":"Yenda IPA"}]' }
//	  - intent: OrderCraftBeer
//	    confirmation: Confirmed
//	    expect:
//	      action: ElicitSlot
//	      slot_to_elicit: OTP
//
// A turn's attributes field replaces the threaded attributes for that turn.
//
// # Deterministic Testing
//
// The harness uses:
//   - Confirmation codes from scenario.codes (testutil.FixedCodes)
//   - Sequential turn ids (testutil.SequentialTurnIDs)
//   - Recording checkout and notifier fakes
//
// This ensures identical transcripts across runs for golden file comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/happy_path.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, e := range result.Errors {
//	    log.Println(e)
//	}
package harness
