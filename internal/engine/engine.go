package engine

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/petaldesk/engine/internal/engine/gateway"
	"github.com/petaldesk/engine/internal/engine/model"
	"github.com/petaldesk/engine/internal/engine/retriever"
	"github.com/petaldesk/engine/internal/engine/session"
	logx "github.com/petaldesk/engine/pkg/logger"
)

// BusyReply is the fast-fail response when the in-flight turn cap is hit.
const BusyReply = "We're helping a lot of customers right now. Please send your message again in a moment."

// RefusalReply is the neutral redirect for unsafe input. It never echoes any
// part of the inbound message.
const RefusalReply = "I can only help with our shop's products and orders. Is there a bouquet or arrangement I can help you find?"

// SafetyGate screens inbound messages. See the safety package.
type SafetyGate interface {
	Check(ctx context.Context, message string) model.SecurityVerdict
}

// LanguageGateway is the two-capability LLM boundary. See the gateway package.
type LanguageGateway interface {
	Understand(ctx context.Context, message string, sess *model.Session) model.IntentResult
	Generate(ctx context.Context, pc gateway.PromptContext) string
}

// ProductRetriever resolves a search intent. See the retriever package.
type ProductRetriever interface {
	Retrieve(ctx context.Context, intent model.SearchIntent, prefs model.Preferences) retriever.Result
}

// Composer assembles the final reply. See the composer package.
type Composer interface {
	Compose(text string, candidates []model.ProductCandidate, quality model.SearchQuality) string
}

// Engine is the per-message coordinator. Every collaborator guarantees a
// valid return value under failure, so HandleTurn itself has exactly two
// non-happy outcomes: the busy fast-fail and caller cancellation.
type Engine struct {
	gate      SafetyGate
	store     session.Store
	retriever ProductRetriever
	gateway   LanguageGateway
	composer  Composer
	inFlight  *semaphore.Weighted
}

func New(cfg model.EngineConfig, gate SafetyGate, store session.Store, retr ProductRetriever, gw LanguageGateway, comp Composer) *Engine {
	max := cfg.MaxInFlight
	if max <= 0 {
		max = 64
	}
	return &Engine{
		gate:      gate,
		store:     store,
		retriever: retr,
		gateway:   gw,
		composer:  comp,
		inFlight:  semaphore.NewWeighted(max),
	}
}

// HandleTurn processes one inbound message end to end and returns the
// outbound reply. The only error it ever returns is the caller's own
// cancellation; everything else degrades to a usable reply.
//
// All component calls up to the persist step are repeat-safe reads, so a
// caller retrying a turn that failed early appends nothing twice: the single
// session write happens at the persist step.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, message string) (string, error) {
	if !e.inFlight.TryAcquire(1) {
		logx.Warn().Str("sessionID", sessionID).Msg("in-flight turn cap reached, fast-failing")
		return BusyReply, nil
	}
	defer e.inFlight.Release(1)

	st := stateReceived

	verdict := e.gate.Check(ctx, message)
	st = e.step(sessionID, st, stateScreened)
	if !verdict.IsSafe {
		e.step(sessionID, st, stateRejected)
		logx.Info().Str("sessionID", sessionID).Str("reason", verdict.Reason).Msg("turn rejected by safety gate")
		return RefusalReply, nil
	}

	sess, err := e.store.Load(ctx, sessionID)
	if err != nil || sess == nil {
		// store contract degrades internally; an error here means even the
		// fallback failed, so run the turn stateless
		logx.Error().Err(err).Str("sessionID", sessionID).Msg("session load failed, continuing without history")
		sess = model.NewSession(sessionID)
	}
	st = e.step(sessionID, st, stateContextLoaded)

	intent := e.gateway.Understand(ctx, message, sess)
	st = e.step(sessionID, st, stateUnderstood)

	result := retriever.Result{Quality: model.QualityNone}
	if intent.RequiresSearch && intent.Search != nil {
		result = e.retriever.Retrieve(ctx, *intent.Search, sess.Preferences)
		st = e.step(sessionID, st, stateSearched)
	}

	text := e.gateway.Generate(ctx, gateway.PromptContext{
		Session:    sess,
		Message:    message,
		Intent:     intent,
		Candidates: result.Candidates,
		Quality:    result.Quality,
	})
	st = e.step(sessionID, st, stateGenerated)

	reply := e.composer.Compose(text, result.Candidates, result.Quality)
	st = e.step(sessionID, st, stateComposed)

	// caller gone: discard everything computed so far, persist nothing
	if err := ctx.Err(); err != nil {
		logx.Info().Str("sessionID", sessionID).Msg("turn cancelled before persist, discarding results")
		return "", err
	}

	userTurn := model.NewTurn(model.RoleUser, message)
	userTurn.Intent = &intent
	agentTurn := model.NewTurn(model.RoleAgent, reply)
	if intent.Search != nil {
		sess.Preferences.Merge(intent.Search.PreferenceSignals())
		pending := intent.Search.Clone()
		sess.PendingIntent = &pending
	}
	if err := e.store.CommitTurn(ctx, sess, userTurn, agentTurn); err != nil {
		// memory loss, not turn failure
		logx.Error().Err(err).Str("sessionID", sessionID).Msg("turn persist failed on every backend")
	}
	st = e.step(sessionID, st, statePersisted)

	e.step(sessionID, st, stateDone)
	return reply, nil
}

func (e *Engine) step(sessionID string, from, to state) state {
	logx.Debug().
		Str("sessionID", sessionID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("turn state transition")
	return to
}
