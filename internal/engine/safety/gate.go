package safety

import (
	"context"
	"time"

	"github.com/petaldesk/engine/internal/engine/model"
	logx "github.com/petaldesk/engine/pkg/logger"
)

// Classifier is the primary safety classifier boundary. Implementations are
// typically network-bound and may fail or time out.
type Classifier interface {
	Classify(ctx context.Context, text string) (model.SecurityVerdict, error)
}

// Gate screens inbound messages before any further processing. The primary
// classifier runs under a hard timeout; on any failure the gate falls back to
// local heuristic rules. Unavailability is never "allow by default" and never
// surfaces to the caller as an error.
type Gate struct {
	primary Classifier
	rules   *RuleSet
	timeout time.Duration
}

// NewGate builds a gate. primary may be nil, in which case only the heuristic
// rules run.
func NewGate(primary Classifier, rules *RuleSet, cfg model.SafetyConfig) *Gate {
	if rules == nil {
		rules = DefaultRules()
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Gate{primary: primary, rules: rules, timeout: timeout}
}

// Check classifies a single message. Pure with respect to session history:
// the verdict depends only on the message content.
func (g *Gate) Check(ctx context.Context, message string) model.SecurityVerdict {
	if g.primary != nil {
		cctx, cancel := context.WithTimeout(ctx, g.timeout)
		verdict, err := g.primary.Classify(cctx, message)
		cancel()
		if err == nil {
			return verdict
		}
		logx.Warn().Err(err).Msg("primary safety classifier unavailable, using heuristic fallback")
	}
	return g.rules.Check(message)
}
