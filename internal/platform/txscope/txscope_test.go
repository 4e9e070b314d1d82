package txscope

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"petclinic/internal/platform/logger"
)

// fakeManager abre un scope por llamada salvo que ya exista uno propio.
type fakeManager struct {
	opened int
}

func (m *fakeManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, ReadOnly, fn)
}

func (m *fakeManager) ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, ReadWrite, fn)
}

func (m *fakeManager) run(ctx context.Context, mode Mode, fn func(ctx context.Context) error) error {
	if _, ok := Joined(ctx, m); ok {
		return fn(ctx)
	}
	m.opened++
	ctx, _ = Begin(ctx, m, mode, nil)
	return fn(ctx)
}

func TestJoined_OnlySameOwner(t *testing.T) {
	a, b := &fakeManager{}, &fakeManager{}
	ctx, s := Begin(context.Background(), a, ReadWrite, "tx")

	got, ok := Joined(ctx, a)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.NotEmpty(t, got.ID)

	_, ok = Joined(ctx, b)
	assert.False(t, ok)

	_, ok = From(context.Background())
	assert.False(t, ok)
}

func TestCheckWritable(t *testing.T) {
	m := &fakeManager{}
	ro, _ := Begin(context.Background(), m, ReadOnly, nil)
	rw, _ := Begin(context.Background(), m, ReadWrite, nil)

	assert.ErrorIs(t, CheckWritable(ro, m), ErrReadOnly)
	assert.NoError(t, CheckWritable(rw, m))
	assert.NoError(t, CheckWritable(context.Background(), m))
	assert.NoError(t, CheckWritable(ro, &fakeManager{}))
}

func TestRead_InnerCallsJoinOuterScope(t *testing.T) {
	m := &fakeManager{}

	err := Write(context.Background(), m, func(ctx context.Context) error {
		outer, _ := From(ctx)
		n, err := Read(ctx, m, func(ctx context.Context) (int, error) {
			inner, _ := From(ctx)
			assert.Same(t, outer, inner)
			assert.Equal(t, ReadWrite, inner.Mode)
			return 3, nil
		})
		assert.Equal(t, 3, n)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, m.opened)
}

func TestRead_ErrorDropsValue(t *testing.T) {
	boom := errors.New("boom")
	v, err := Read(context.Background(), &fakeManager{}, func(context.Context) (string, error) {
		return "partial", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, v)
}

func TestInstrument_CountsOutcomesAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	inner := &fakeManager{}
	m := Instrument(inner, logger.FromZap(zap.New(core)), metrics)

	require.NoError(t, m.ReadOnly(context.Background(), func(context.Context) error { return nil }))
	boom := errors.New("boom")
	err = m.ReadWrite(context.Background(), func(ctx context.Context) error {
		// anidada: se une al scope, no cuenta
		_ = m.ReadOnly(ctx, func(context.Context) error { return nil })
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 2, inner.opened)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.scopes.WithLabelValues("read_only", "commit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.scopes.WithLabelValues("read_write", "rollback")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.scopes.WithLabelValues("read_only", "rollback")))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "transaction scope committed", logs.All()[0].Message)
	rolled := logs.All()[1]
	assert.Equal(t, "transaction scope rolled back", rolled.Message)
	assert.Equal(t, "read_write", rolled.ContextMap()["mode"])
	assert.NotEmpty(t, rolled.ContextMap()["scope_id"])
}

func TestNewMetrics_DuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}
