package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spf13/cobra"

	"github.com/roach88/craftbeerbot/internal/catalog"
	"github.com/roach88/craftbeerbot/internal/config"
	"github.com/roach88/craftbeerbot/internal/engine"
	"github.com/roach88/craftbeerbot/internal/lex"
	"github.com/roach88/craftbeerbot/internal/notify"
	"github.com/roach88/craftbeerbot/internal/store"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Session  string
	Database string
	DryRun   bool
	EnvFile  string
}

// InvokeResult is the JSON payload of a handled turn.
type InvokeResult struct {
	TurnID     string             `json:"turn_id"`
	Transition string             `json:"transition"`
	Seq        int64              `json:"seq,omitempty"`
	Response   events.LexResponse `json:"response"`
	Attributes map[string]string  `json:"attributes"`
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke [event.json|-]",
		Short: "Handle one Lex event",
		Long: `Handle one Lex code-hook event and print the response.

The event is read from the given file, or from stdin when the argument
is "-" or omitted.

With --session, the session's attributes are loaded from --db before the
turn (replacing the event's) and the turn is recorded afterwards, so a
conversation can be carried across invocations.

Without --dry-run the checkout and notification settings are read from
the environment (and .env in development) and must be complete. With
--dry-run, codes are printed instead of sent and orders are printed
instead of placed.

Examples:
  beerbot invoke event.json --dry-run
  beerbot invoke --dry-run --db ./beerbot.db --session alice < event.json
  beerbot invoke event.json --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "-"
			if len(args) == 1 {
				source = args[0]
			}
			return runInvoke(cmd.Context(), opts, source, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to load and record (requires --db)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print codes and orders instead of sending them")
	cmd.Flags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file read in development")

	return cmd
}

func runInvoke(ctx context.Context, opts *InvokeOptions, source string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Session != "" && opts.Database == "" {
		return NewExitError(ExitCommandError, "--session requires --db")
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	in, err := readEvent(source, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodeBadEvent, err.Error(), map[string]string{"source": source})
		return WrapExitError(ExitCommandError, "failed to read event", err)
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
	}

	if opts.Session != "" {
		sess, err := st.LoadSession(ctx, opts.Session)
		switch {
		case errors.Is(err, store.ErrSessionNotFound):
			formatter.VerboseLog("session %s is new", opts.Session)
		case err != nil:
			return WrapExitError(ExitCommandError, "failed to load session", err)
		default:
			formatter.VerboseLog("session %s at seq %d", sess.ID, sess.Seq)
			in.SessionAttributes = sess.Attributes
		}
	}

	cat, err := catalog.Default()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	eng, err := buildEngine(ctx, opts, cat, logger, formatter.GetErrWriter())
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to configure bot", err)
	}

	ev, err := lex.FromEvent(in, cat)
	if err != nil {
		logger.Warn("session attributes ignored", "error", err)
	}

	turn := eng.HandleTurn(ctx, ev)
	out, err := lex.ToResponse(turn.Response)
	if err != nil {
		_ = formatter.Error(ErrCodeTurnFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to encode response", err)
	}

	result := InvokeResult{
		TurnID:     turn.ID,
		Transition: string(turn.Transition),
		Response:   out,
		Attributes: out.SessionAttributes,
	}

	if opts.Session != "" {
		intent := ""
		if in.CurrentIntent != nil {
			intent = in.CurrentIntent.Name
		}
		seq, err := st.RecordTurn(ctx, store.Turn{
			ID:         turn.ID,
			SessionID:  opts.Session,
			Intent:     intent,
			Source:     in.InvocationSource,
			Transition: string(turn.Transition),
			Action:     string(turn.Response.Action.Type),
			Message:    turn.Response.Action.Message,
			Before:     in.SessionAttributes,
			After:      out.SessionAttributes,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record turn", err)
		}
		result.Seq = seq
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: result, TraceID: turn.ID})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Turn %s (%s)\n", turn.ID, turn.Transition)
	fmt.Fprintf(w, "  %s\n", turn.Response.Action)
	if result.Seq > 0 {
		fmt.Fprintf(w, "  Session: %s (seq %d)\n", opts.Session, result.Seq)
	}
	fmt.Fprintf(w, "  Attributes: %s\n", formatAttributes(out.SessionAttributes))
	return nil
}

// readEvent decodes a Lex event from a file, or from stdin when source is "-".
func readEvent(source string, stdin io.Reader) (events.LexEvent, error) {
	var data []byte
	var err error
	if source == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return events.LexEvent{}, fmt.Errorf("read event: %w", err)
	}

	var in events.LexEvent
	if err := json.Unmarshal(data, &in); err != nil {
		return events.LexEvent{}, fmt.Errorf("decode event: %w", err)
	}
	return in, nil
}

// buildEngine wires the reducer from the environment. With --dry-run the
// outbound collaborators print to diag and missing settings are tolerated.
func buildEngine(ctx context.Context, opts *InvokeOptions, cat *catalog.Catalog, logger *slog.Logger, diag io.Writer) (*engine.Engine, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		if cfg.NotifyPhoneNumber == "" {
			cfg.NotifyPhoneNumber = dryRunPhoneNumber
		}
		if cfg.NotifyTargetARN == "" {
			cfg.NotifyTargetARN = dryRunTargetARN
		}
		notifier, err := cfg.Notifier(printingPublisher{w: diag})
		if err != nil {
			return nil, err
		}
		return engine.New(engine.Config{
			Catalog:     cat,
			Checkout:    printingCheckout{w: diag},
			Notifier:    notifier,
			Credentials: cfg.Credentials(),
			Payment:     cfg.Payment(),
			Logger:      logger,
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w; rerun with --dry-run to skip checkout and notifications", err)
	}
	client, err := notify.NewSNSClient(ctx)
	if err != nil {
		return nil, err
	}
	notifier, err := cfg.Notifier(client)
	if err != nil {
		return nil, err
	}
	return engine.New(engine.Config{
		Catalog:     cat,
		Checkout:    cfg.CheckoutClient(),
		Notifier:    notifier,
		Credentials: cfg.Credentials(),
		Payment:     cfg.Payment(),
		Logger:      logger,
	})
}

// formatAttributes renders attributes as sorted key=value pairs.
func formatAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + attrs[k]
	}
	return strings.Join(parts, " ")
}
