package features

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/archetype/internal/embeddings"
	"github.com/fyrsmithlabs/archetype/internal/logging"
	"github.com/fyrsmithlabs/archetype/internal/session"
)

// Block dimensions beyond the narrative embedding.
const (
	BehavioralDim = 15
	TemporalDim   = 5
	ConstraintDim = 5
)

// Composer turns session histories into fixed-length behavioral vectors.
//
// One warm embedder handle is reused across users; per-user vectors are
// independent, so callers may shard batches across composers if they need
// parallelism.
type Composer struct {
	embedder embeddings.Embedder
	logger   *logging.Logger
	now      func() time.Time
}

// NewComposer creates a composer over the given embedder.
func NewComposer(embedder embeddings.Embedder, logger *logging.Logger) *Composer {
	return &Composer{
		embedder: embedder,
		logger:   logger.Named("features"),
		now:      time.Now,
	}
}

// WithClock overrides the clock used for recency features. Tests use this
// to pin "now"; production code never calls it.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	c.now = now
	return c
}

// Dimension returns the total vector dimension: embedding + 15 + 5 + 5.
func (c *Composer) Dimension() int {
	return c.embedder.Dimension() + BehavioralDim + TemporalDim + ConstraintDim
}

// Compose builds the behavioral vector for one user.
//
// An empty history yields the all-zero vector of full dimension, never an
// error.
func (c *Composer) Compose(ctx context.Context, history session.History) ([]float64, error) {
	if len(history) == 0 {
		return make([]float64, c.Dimension()), nil
	}

	normalized := history.Normalized()

	embedded, err := c.embedder.Embed(ctx, Narrative(normalized))
	if err != nil {
		return nil, fmt.Errorf("embedding journey narrative: %w", err)
	}

	return c.assemble(embedded, normalized), nil
}

// ComposeBatch builds one vector per history. Row i equals
// Compose(histories[i]); narratives for all non-empty histories go through
// a single batched embedder call.
func (c *Composer) ComposeBatch(ctx context.Context, histories []session.History) ([][]float64, error) {
	vectors := make([][]float64, len(histories))

	normalized := make([]session.History, len(histories))
	narratives := make([]string, 0, len(histories))
	rows := make([]int, 0, len(histories))
	for i, h := range histories {
		if len(h) == 0 {
			vectors[i] = make([]float64, c.Dimension())
			continue
		}
		normalized[i] = h.Normalized()
		narratives = append(narratives, Narrative(normalized[i]))
		rows = append(rows, i)
	}

	if len(narratives) > 0 {
		embedded, err := c.embedder.EmbedBatch(ctx, narratives)
		if err != nil {
			return nil, fmt.Errorf("embedding journey narratives: %w", err)
		}
		if len(embedded) != len(narratives) {
			return nil, fmt.Errorf("%w: got %d embeddings for %d narratives",
				embeddings.ErrEmbeddingFailed, len(embedded), len(narratives))
		}
		for j, i := range rows {
			vectors[i] = c.assemble(embedded[j], normalized[i])
		}
	}

	c.logger.Debug(ctx, "composed behavioral vectors",
		zap.Int("users", len(histories)),
		zap.Int("empty_histories", len(histories)-len(rows)),
		zap.Int("dimension", c.Dimension()))

	return vectors, nil
}

// assemble concatenates the four feature blocks in their fixed order.
func (c *Composer) assemble(embedded []float32, h session.History) []float64 {
	vec := make([]float64, 0, c.Dimension())
	for _, v := range embedded {
		vec = append(vec, float64(v))
	}
	vec = append(vec, behavioralBlock(h)...)
	vec = append(vec, temporalBlock(h, c.now())...)
	vec = append(vec, constraintBlock(h)...)
	return vec
}

// Narrative renders a history as the human-readable journey string fed to
// the embedder, e.g.
// "User journey: research -> compare -> purchase. Total steps: 3.".
func Narrative(h session.History) string {
	return fmt.Sprintf("User journey: %s. Total steps: %d.",
		strings.Join(h.Intents(), " -> "), len(h))
}
