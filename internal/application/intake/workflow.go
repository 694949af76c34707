package intake

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/contactevin2u/orderops-console/internal/application/ports"
	"github.com/contactevin2u/orderops-console/internal/domain"
	"github.com/contactevin2u/orderops-console/internal/domain/entity"
)

// State is the intake lifecycle position.
type State string

const (
	StateEmpty       State = "EMPTY"
	StateDrafting    State = "DRAFTING"
	StateParsing     State = "PARSING"
	StateReviewing   State = "REVIEWING"
	StateSaving      State = "SAVING"
	StateSaved       State = "SAVED"
	StateParseFailed State = "PARSE_FAILED"
	StateSaveFailed  State = "SAVE_FAILED"
)

// Operator-facing status lines, as the intake screen shows them.
const (
	msgParsing     = "Parsing..."
	msgParsed      = "Parsed ✓  Semak & edit sebelum simpan."
	msgParseFailed = "Parse failed"
	msgSaving      = "Menyimpan order..."
	msgSaveFailed  = "Gagal simpan order"
)

// Snapshot is a point-in-time copy of the workflow for rendering.
type Snapshot struct {
	State   State
	Text    string
	Draft   *entity.Draft
	Code    string
	Message string
}

// Workflow drives one operator's intake: paste raw text, parse it into an
// editable draft, save the draft as an order. One instance per session; the
// raw text is the single source of truth before a parse, the draft after.
//
// Parse and Save carry explicit in-flight guards: a re-entrant trigger while
// one request is outstanding is ignored, never queued. Completions are applied
// under the generation captured at dispatch, so a request that resolves after
// Reset finds a bumped generation and is discarded instead of resurrecting a
// torn-down view.
type Workflow struct {
	parser ports.Parser
	orders ports.OrderService
	log    zerolog.Logger

	mu            sync.Mutex
	state         State
	text          string
	draft         *entity.Draft
	code          string
	message       string
	idemKey       string
	gen           uint64
	parseInFlight bool
	saveInFlight  bool
}

// NewWorkflow builds an intake workflow in the Empty state.
func NewWorkflow(parser ports.Parser, orders ports.OrderService, log zerolog.Logger) *Workflow {
	return &Workflow{
		parser: parser,
		orders: orders,
		log:    log.With().Str("workflow", "intake").Logger(),
		state:  StateEmpty,
	}
}

// Snapshot returns a copy of the current workflow state. The draft is cloned
// so callers cannot mutate workflow memory.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		State:   w.state,
		Text:    w.text,
		Draft:   w.draft.Clone(),
		Code:    w.code,
		Message: w.message,
	}
}

// SetText replaces the raw message text. No local validation: empty text is a
// valid, if useless, submission — the parser is authoritative on meaning.
// From Saved this starts a fresh intake, clearing the previous draft and code.
func (w *Workflow) SetText(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateParsing || w.state == StateSaving {
		return domain.ErrInvalidState
	}
	if w.state == StateSaved {
		w.draft = nil
		w.code = ""
		w.idemKey = ""
		w.message = ""
		w.state = StateEmpty
	}
	w.text = text
	switch w.state {
	case StateEmpty, StateDrafting, StateParseFailed:
		if text == "" {
			w.state = StateEmpty
		} else {
			w.state = StateDrafting
		}
	}
	// Reviewing/SaveFailed keep the draft on display; a re-parse replaces it.
	return nil
}

// Parse submits the raw text to the parsing collaborator. On success the new
// draft replaces any prior draft in full (last parse wins) and a fresh
// idempotency key is minted for the eventual save. On failure the text is
// left byte-for-byte intact and no partial draft is ever surfaced.
func (w *Workflow) Parse(ctx context.Context) error {
	w.mu.Lock()
	if w.parseInFlight {
		w.mu.Unlock()
		return domain.ErrParseInFlight
	}
	if w.state == StateSaving {
		w.mu.Unlock()
		return domain.ErrInvalidState
	}
	w.parseInFlight = true
	w.state = StateParsing
	w.message = msgParsing
	text := w.text
	gen := w.gen
	w.mu.Unlock()

	draft, err := w.parser.Parse(ctx, text)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.parseInFlight = false
	if gen != w.gen {
		// The owning view was reset while the request was in flight.
		w.log.Debug().Msg("discarding stale parse completion")
		return nil
	}
	if err != nil {
		w.state = StateParseFailed
		w.message = msgParseFailed
		w.log.Warn().Err(err).Msg("parse failed")
		return err
	}
	w.draft = draft
	w.idemKey = uuid.NewString()
	w.state = StateReviewing
	w.message = msgParsed
	w.log.Info().Int("fields", draft.Len()).Msg("message parsed")
	return nil
}

// ReplaceDraft swaps in a fully operator-edited draft. Edits are free-form
// and unvalidated here; the backend validates at save time. The idempotency
// key is kept: edited or not, this is still the same logical order.
func (w *Workflow) ReplaceDraft(draft *entity.Draft) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateReviewing && w.state != StateSaveFailed {
		return domain.ErrInvalidState
	}
	w.draft = draft
	return nil
}

// SetField edits one field of the draft under review, structurally: replace
// the value at the key path, appending when the key is new.
func (w *Workflow) SetField(path []string, v entity.Value) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateReviewing && w.state != StateSaveFailed {
		return domain.ErrInvalidState
	}
	if w.draft == nil {
		return domain.ErrInvalidState
	}
	if err := w.draft.SetPath(path, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// Save submits the current, possibly edited, draft to the order backend.
// Only reachable from Reviewing (or SaveFailed, for a retry). While one save
// is outstanding, further Save calls are ignored so a double-click issues
// exactly one create request. On failure the draft survives untouched.
func (w *Workflow) Save(ctx context.Context) error {
	w.mu.Lock()
	if w.saveInFlight {
		w.mu.Unlock()
		return domain.ErrSaveInFlight
	}
	if w.state != StateReviewing && w.state != StateSaveFailed {
		w.mu.Unlock()
		return domain.ErrInvalidState
	}
	w.saveInFlight = true
	w.state = StateSaving
	w.message = msgSaving
	draft := w.draft
	key := w.idemKey
	gen := w.gen
	w.mu.Unlock()

	code, err := w.orders.CreateOrder(ctx, draft, key)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.saveInFlight = false
	if gen != w.gen {
		w.log.Debug().Msg("discarding stale save completion")
		return nil
	}
	if err != nil {
		w.state = StateSaveFailed
		w.message = msgSaveFailed
		w.log.Warn().Err(err).Msg("save failed")
		return err
	}
	w.code = code
	w.state = StateSaved
	w.message = fmt.Sprintf("Order %s created ✓", code)
	w.log.Info().Str("code", code).Msg("order created")
	return nil
}

// Reset starts a new intake. Saved is never auto-reset; this is the explicit
// way back to Empty. Any in-flight completion resolves against the old
// generation and is dropped.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	w.state = StateEmpty
	w.text = ""
	w.draft = nil
	w.code = ""
	w.message = ""
	w.idemKey = ""
}
