package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/craftbeerbot/internal/dialog"
	"github.com/roach88/craftbeerbot/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // optional - without it, sessions are listed
	Action   string // optional - filter to one dialog action
}

// TraceTurn is a single recorded turn in the timeline.
type TraceTurn struct {
	Seq        int64             `json:"seq"`
	ID         string            `json:"id"`
	Intent     string            `json:"intent"`
	Source     string            `json:"source"`
	Transition string            `json:"transition"`
	Action     string            `json:"action"`
	Message    string            `json:"message,omitempty"`
	Before     map[string]string `json:"attributes_before"`
	After      map[string]string `json:"attributes_after"`
}

// TraceResult holds the complete trace output for one session.
type TraceResult struct {
	Session    string            `json:"session"`
	Timeline   []TraceTurn       `json:"timeline"`
	Attributes map[string]string `json:"attributes"`
	Stats      TraceStats        `json:"stats"`
}

// TraceStats holds summary statistics for the session.
type TraceStats struct {
	Turns      int  `json:"turns"`
	CodesSent  int  `json:"codes_sent"`
	OrderOpen  bool `json:"order_open"`
	CodeIssued bool `json:"code_issued"`
}

// SessionSummary is one row of the session listing.
type SessionSummary struct {
	ID    string `json:"id"`
	Turns int64  `json:"turns"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recorded turns of a session",
		Long: `Show the turns recorded by "beerbot invoke --session".

For each turn the timeline shows the intent, the transition the
reducer took, the dialog action it answered with, and the session
attributes before and after. Without --session, recorded sessions
are listed.

Examples:
  beerbot trace --db ./beerbot.db
  beerbot trace --db ./beerbot.db --session alice
  beerbot trace --db ./beerbot.db --session alice --action ElicitSlot
  beerbot trace --db ./beerbot.db --session alice --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to trace")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter to one dialog action (e.g. ElicitSlot)")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Session == "" {
		return listSessions(ctx, st, opts, cmd)
	}

	turns, err := st.ListTurns(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list turns", err)
	}

	if len(turns) == 0 {
		if opts.Format == "json" {
			return outputTraceJSON(cmd, TraceResult{
				Session:    opts.Session,
				Timeline:   []TraceTurn{},
				Attributes: map[string]string{},
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "No turns found for session: %s\n", opts.Session)
		return nil
	}

	result := TraceResult{
		Session:    opts.Session,
		Timeline:   buildTimeline(turns, opts.Action),
		Attributes: turns[len(turns)-1].After,
		Stats:      buildStats(turns),
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	return outputTraceText(cmd, result, opts.Verbose)
}

// buildTimeline converts recorded turns to timeline entries. When
// actionFilter is set, only turns that answered with that action are kept.
func buildTimeline(turns []store.Turn, actionFilter string) []TraceTurn {
	timeline := make([]TraceTurn, 0, len(turns))
	for _, t := range turns {
		if actionFilter != "" && t.Action != actionFilter {
			continue
		}
		timeline = append(timeline, TraceTurn{
			Seq:        t.Seq,
			ID:         t.ID,
			Intent:     t.Intent,
			Source:     t.Source,
			Transition: t.Transition,
			Action:     t.Action,
			Message:    t.Message,
			Before:     t.Before,
			After:      t.After,
		})
	}
	return timeline
}

// buildStats summarises a session over all of its turns, ignoring filters.
// A code counts as sent when a turn leaves a different otp than it found.
func buildStats(turns []store.Turn) TraceStats {
	stats := TraceStats{Turns: len(turns)}
	for _, t := range turns {
		if otp, ok := t.After[dialog.AttrOTP]; ok && otp != t.Before[dialog.AttrOTP] {
			stats.CodesSent++
		}
	}
	last := turns[len(turns)-1].After
	_, stats.OrderOpen = last[dialog.AttrBeers]
	_, stats.CodeIssued = last[dialog.AttrOTP]
	return stats
}

func listSessions(ctx context.Context, st *store.Store, opts *TraceOptions, cmd *cobra.Command) error {
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	summaries := make([]SessionSummary, len(sessions))
	for i, s := range sessions {
		summaries[i] = SessionSummary{ID: s.ID, Turns: s.Seq}
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: summaries})
	}

	w := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	fmt.Fprintln(w, "Sessions:")
	for _, s := range summaries {
		fmt.Fprintf(w, "  %s (%d turns)\n", s.ID, s.Turns)
	}
	return nil
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(CLIResponse{
		Status: "ok",
		Data:   result,
	})
}

// outputTraceText outputs the trace result as human-readable text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Session: %s\n", result.Session)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Timeline:")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no matching turns)")
	}
	for _, t := range result.Timeline {
		fmt.Fprintf(w, "  [%d] %s -> %s (%s)\n", t.Seq, t.Intent, t.Transition, t.Action)
		if t.Message != "" {
			fmt.Fprintf(w, "      %q\n", t.Message)
		}
		if verbose {
			fmt.Fprintf(w, "      id: %s source: %s\n", t.ID, t.Source)
			fmt.Fprintf(w, "      before: %s\n", formatAttributes(t.Before))
			fmt.Fprintf(w, "      after:  %s\n", formatAttributes(t.After))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Attributes: %s\n", formatAttributes(result.Attributes))
	fmt.Fprintf(w, "Stats: %d turns, %d codes sent", result.Stats.Turns, result.Stats.CodesSent)
	switch {
	case result.Stats.CodeIssued:
		fmt.Fprint(w, ", awaiting code")
	case result.Stats.OrderOpen:
		fmt.Fprint(w, ", order open")
	}
	fmt.Fprintln(w)
	return nil
}
