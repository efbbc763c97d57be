package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	MsgMailboxUnavailable = "Error: the Gmail service is not available. Please make sure authentication is complete and try again."
	MsgOracleUnavailable  = "Error: the language model is not available. Check the API key and configuration."
	MsgClassifyFailed     = "Sorry, I had trouble understanding that request (the controller answer could not be decoded)."
	MsgClassifyNoOracle   = "Sorry, I couldn't reach the language model to interpret your request. Please try again shortly."
	MsgUnexpected         = "Sorry, an unexpected error occurred while executing that action. Please try again."
)

// Turn outcomes reported to the Recorder.
const (
	OutcomeOK                = "ok"
	OutcomeUnavailable       = "unavailable"
	OutcomeOracleUnavailable = "oracle_unavailable"
	OutcomeClassification    = "classification_error"
	OutcomePrecondition      = "precondition"
	OutcomeCapability        = "capability_error"
	OutcomeUnexpected        = "unexpected"
)

// Recorder receives one observation per turn.
type Recorder interface {
	ObserveTurn(intent Intent, outcome string, took time.Duration)
}

// Orchestrator runs one chat turn: readiness check, classification,
// dispatch, error conversion. It never returns an error to the caller.
type Orchestrator struct {
	classifier  *Classifier
	dispatcher  *Dispatcher
	oracle      Checker
	mailbox     Checker
	logger      *zap.Logger
	recorder    Recorder
	turnTimeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder reports turn outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithTurnTimeout bounds the oracle and port calls of a single turn.
func WithTurnTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.turnTimeout = d }
}

// WithUserID sets the mailbox user the dispatcher acts for.
func WithUserID(userID string) Option {
	return func(o *Orchestrator) {
		o.dispatcher.userID = userID
	}
}

// NewOrchestrator wires the classifier and dispatcher around the given ports.
func NewOrchestrator(oracle Oracle, mailbox Mailbox, writer ReplyWriter, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		classifier: NewClassifier(oracle),
		dispatcher: NewDispatcher(mailbox, writer, DefaultUserID),
		oracle:     oracle,
		mailbox:    mailbox,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// HandleTurn answers message given the prior history, reading and updating
// cc. The caller must not run two turns against the same cc concurrently.
func (o *Orchestrator) HandleTurn(ctx context.Context, cc *ConversationContext, history []Turn, message string) string {
	start := time.Now()
	if o.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.turnTimeout)
		defer cancel()
	}

	reply, intent, outcome := o.handle(ctx, cc, history, message)

	took := time.Since(start)
	o.logger.Debug("Turn handled",
		zap.String("intent", string(intent)),
		zap.String("outcome", outcome),
		zap.Duration("took", took),
	)
	if o.recorder != nil {
		o.recorder.ObserveTurn(intent, outcome, took)
	}

	return reply
}

func (o *Orchestrator) handle(ctx context.Context, cc *ConversationContext, history []Turn, message string) (string, Intent, string) {
	if err := o.mailbox.Check(ctx); err != nil {
		o.logger.Warn("Mailbox not ready", zap.Error(err))
		return MsgMailboxUnavailable, "", OutcomeUnavailable
	}
	if err := o.oracle.Check(ctx); err != nil {
		o.logger.Warn("Oracle not ready", zap.Error(err))
		return MsgOracleUnavailable, "", OutcomeUnavailable
	}

	dec, err := o.classifier.Classify(ctx, history, message, cc)
	if err != nil {
		var ce *ClassificationError
		if errors.As(err, &ce) {
			o.logger.Warn("Controller answer rejected", zap.Error(err), zap.String("raw", ce.Raw))
			return MsgClassifyFailed, "", OutcomeClassification
		}
		o.logger.Error("Oracle call failed", zap.Error(err))
		return MsgClassifyNoOracle, "", OutcomeOracleUnavailable
	}

	reply, err := o.dispatch(ctx, dec, cc)
	if err == nil {
		return reply, dec.Intent, OutcomeOK
	}

	var pe *PreconditionError
	var ae *actionError
	switch {
	case errors.As(err, &pe):
		return pe.Message, dec.Intent, OutcomePrecondition
	case errors.As(err, &ae):
		o.logger.Info("Capability port reported an error", zap.String("intent", string(dec.Intent)), zap.Error(err))
		return ae.Error(), dec.Intent, OutcomeCapability
	}

	o.logger.Error("Unexpected failure while executing action",
		zap.String("intent", string(dec.Intent)),
		zap.Error(err),
	)
	return MsgUnexpected, dec.Intent, OutcomeUnexpected
}

func (o *Orchestrator) dispatch(ctx context.Context, dec Decision, cc *ConversationContext) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in dispatch: %v", r)
		}
	}()
	return o.dispatcher.Dispatch(ctx, dec, cc)
}
