package assist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedDiagramsReusesResults(t *testing.T) {
	model := &fakeModel{reply: "graph TD\nA-->B"}
	cached := NewCachedDiagrams(NewLocal(model, nil), time.Minute)
	ctx := context.Background()

	first, err := cached.Generate(ctx, "A leads to B")
	require.NoError(t, err)
	second, err := cached.Generate(ctx, "  A leads to B\n")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, model.calls, "whitespace-equal text hits the cache")
	assert.Equal(t, 1, cached.Len())
}

func TestCachedDiagramsSkipsFailures(t *testing.T) {
	model := &fakeModel{err: errors.New("boom")}
	cached := NewCachedDiagrams(NewLocal(model, nil), time.Minute)

	_, err := cached.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Zero(t, cached.Len())
}

func TestWithDiagramCacheKeepsOtherCollaborators(t *testing.T) {
	model := &fakeModel{reply: "graph TD\nA-->B"}
	svc := WithDiagramCache(NewLocal(model, nil), time.Minute)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "A leads to B")
	require.NoError(t, err)
	_, err = svc.Generate(ctx, "A leads to B")
	require.NoError(t, err)
	assert.Equal(t, 1, model.calls)

	_, err = svc.Send(ctx, nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, 2, model.calls, "chat is not cached")
}
