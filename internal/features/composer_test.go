package features

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/archetype/internal/embeddings"
	"github.com/fyrsmithlabs/archetype/internal/logging"
	"github.com/fyrsmithlabs/archetype/internal/session"
)

func newTestComposer(t *testing.T, dim int) *Composer {
	t.Helper()
	embedder, err := embeddings.NewTokenHashEmbedder(dim)
	require.NoError(t, err)
	fixed := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	return NewComposer(embedder, logging.NewTestLogger(t)).
		WithClock(func() time.Time { return fixed })
}

func TestComposer_Dimension(t *testing.T) {
	c := newTestComposer(t, 384)
	assert.Equal(t, 384+25, c.Dimension())
}

func TestCompose_EmptyHistoryIsZeroVector(t *testing.T) {
	c := newTestComposer(t, 16)

	vec, err := c.Compose(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 16+25), vec)
}

func TestCompose_BlockLayout(t *testing.T) {
	c := newTestComposer(t, 8)

	vec, err := c.Compose(context.Background(), journeyHistory())
	require.NoError(t, err)
	require.Len(t, vec, 8+25)

	// Embedding block is a unit vector, so the journey resolves to
	// something nonzero.
	var embNorm float64
	for _, v := range vec[:8] {
		embNorm += v * v
	}
	assert.InDelta(t, 1.0, embNorm, 1e-6)

	// Behavioral block starts right after the embedding: session count
	// first, mean confidence second.
	assert.InDelta(t, 4.0, vec[8], 1e-9)
	assert.InDelta(t, 0.75, vec[9], 1e-9)

	// No timestamps on this history: temporal block all zero.
	for i := 8 + BehavioralDim; i < 8+BehavioralDim+TemporalDim; i++ {
		assert.Zero(t, vec[i], "temporal position %d", i)
	}
}

func TestComposeBatch_MatchesSingleCompose(t *testing.T) {
	c := newTestComposer(t, 16)
	ctx := context.Background()

	histories := []session.History{
		journeyHistory(),
		nil, // empty history stays a zero row
		{
			{Intent: "browsing_inspiration", Confidence: 0.7, Timestamp: "2025-01-20T08:00:00Z"},
			{Intent: "ready_to_purchase", Confidence: 0.95, Timestamp: "2025-01-21T19:30:00Z"},
		},
	}

	batch, err := c.ComposeBatch(ctx, histories)
	require.NoError(t, err)
	require.Len(t, batch, len(histories))

	for i, h := range histories {
		single, err := c.Compose(ctx, h)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i], "row %d", i)
	}
}

func TestNarrative(t *testing.T) {
	h := session.History{
		{Intent: "category_research"},
		{Intent: "compare_options"},
		{Intent: "ready_to_purchase"},
	}
	assert.Equal(t,
		"User journey: category_research -> compare_options -> ready_to_purchase. Total steps: 3.",
		Narrative(h))
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("onnx session lost")
}

func (failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("onnx session lost")
}

func (failingEmbedder) Dimension() int { return 4 }

func TestCompose_EmbedderFailurePropagates(t *testing.T) {
	c := NewComposer(failingEmbedder{}, logging.NewNop())

	_, err := c.Compose(context.Background(), journeyHistory())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding journey narrative")

	_, err = c.ComposeBatch(context.Background(), []session.History{journeyHistory()})
	require.Error(t, err)
}
