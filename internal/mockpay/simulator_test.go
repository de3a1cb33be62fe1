package mockpay

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var txnPattern = regexp.MustCompile(`^TXN\d+\d{1,6}$`)

func newTestSimulator(t *testing.T, rate float64, delay time.Duration, seed uint64) *Simulator {
	t.Helper()
	sim, err := NewSimulator(config.MockPayConfig{SuccessRate: rate, Delay: delay, Seed: seed})
	require.NoError(t, err)
	return sim
}

func selected(t *testing.T, sim *Simulator, onResult func(Result)) *Payment {
	t.Helper()
	p := sim.Start("ord-1", decimal.NewFromInt(968), onResult)
	require.NoError(t, p.SelectMethod(MethodUPI, map[string]string{"vpa": "shopper@bank"}))
	return p
}

func TestSuccessRateOverManyRuns(t *testing.T) {
	const (
		runs = 10_000
		rate = 0.8
	)
	sim := newTestSimulator(t, rate, 0, 42)

	successes := 0
	seen := make(map[string]struct{}, runs)
	for i := 0; i < runs; i++ {
		p := selected(t, sim, nil)
		res, err := p.Submit(context.Background())
		require.NoError(t, err)
		require.Regexp(t, txnPattern, res.TransactionID)
		_, dup := seen[res.TransactionID]
		require.False(t, dup, "transaction id %s issued twice", res.TransactionID)
		seen[res.TransactionID] = struct{}{}
		if res.Status == StatusSuccess {
			successes++
		}
	}

	sigma := math.Sqrt(rate * (1 - rate) / runs)
	got := float64(successes) / runs
	assert.InDelta(t, rate, got, 2*sigma, "observed success rate %.4f", got)
}

func TestIssuedIDsOnlyKeepCurrentMillisecond(t *testing.T) {
	sim := newTestSimulator(t, 0.5, 0, 3)
	clock := time.UnixMilli(1_700_000_000_000)
	sim.now = func() time.Time { return clock }

	first := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		_, id := sim.draw()
		first[id] = struct{}{}
	}
	assert.Len(t, first, 50)
	assert.Len(t, sim.issued, 50)

	clock = clock.Add(time.Millisecond)
	_, id := sim.draw()
	assert.Len(t, sim.issued, 1, "older milliseconds are forgotten")
	assert.Contains(t, id, "TXN1700000000001")

	// a wall clock stepping back keeps issuing under the latest millisecond
	clock = clock.Add(-time.Second)
	_, id = sim.draw()
	assert.Contains(t, id, "TXN1700000000001")
	assert.Len(t, sim.issued, 2)
}

func TestSuccessRateExtremes(t *testing.T) {
	always := selected(t, newTestSimulator(t, 1, 0, 7), nil)
	res, err := always.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, StateSuccess, always.State())

	never := selected(t, newTestSimulator(t, 0, 0, 7), nil)
	res, err = never.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.NotEmpty(t, res.TransactionID, "a decline carries a transaction id")
	assert.False(t, res.Abandoned())
}

func TestAbandonYieldsEmptyTransactionID(t *testing.T) {
	sim := newTestSimulator(t, 1, 0, 1)

	idle := sim.Start("ord-1", decimal.NewFromInt(10), nil)
	res, err := idle.Abandon()
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Empty(t, res.TransactionID)
	assert.True(t, res.Abandoned())
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(10)))

	chosen := selected(t, sim, nil)
	res, err = chosen.Abandon()
	require.NoError(t, err)
	assert.True(t, res.Abandoned())
	assert.Equal(t, MethodUPI, res.Method)
}

func TestInvalidTransitions(t *testing.T) {
	sim := newTestSimulator(t, 1, 0, 1)

	p := sim.Start("ord-1", decimal.NewFromInt(10), nil)
	_, err := p.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition, "submit before choosing a method")

	require.NoError(t, p.SelectMethod(MethodWallet, nil))
	require.NoError(t, p.SelectMethod(MethodCreditCard, map[string]string{"number": "4111"}), "method can change before submit")

	_, err = p.Submit(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, p.SelectMethod(MethodUPI, nil), ErrInvalidTransition)
	_, err = p.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = p.Abandon()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.ErrorIs(t, p.SelectMethod("cheque", nil), ErrUnknownMethod)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" Credit_Card ")
	require.NoError(t, err)
	assert.Equal(t, MethodCreditCard, m)

	_, err = ParseMethod("bitcoin")
	assert.True(t, errors.Is(err, ErrUnknownMethod))
}

func TestCallbackFiresOnce(t *testing.T) {
	var calls atomic.Int32
	var last Result
	p := selected(t, newTestSimulator(t, 1, 0, 3), func(r Result) {
		calls.Add(1)
		last = r
	})

	res, err := p.Submit(context.Background())
	require.NoError(t, err)
	_, _ = p.Abandon()
	_, _ = p.Submit(context.Background())

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, res.TransactionID, last.TransactionID)
	stored, ok := p.Result()
	require.True(t, ok)
	assert.Equal(t, res.TransactionID, stored.TransactionID)
}

func TestCancelDuringDelayReturnsToMethodSelected(t *testing.T) {
	var calls atomic.Int32
	p := selected(t, newTestSimulator(t, 1, time.Hour, 3), func(Result) { calls.Add(1) })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Submit(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateMethodSelected, p.State())
	assert.Zero(t, calls.Load())
	_, ok := p.Result()
	assert.False(t, ok)
}

func TestAbandonWhileProcessingWins(t *testing.T) {
	var calls atomic.Int32
	p := selected(t, newTestSimulator(t, 1, 50*time.Millisecond, 3), func(Result) { calls.Add(1) })

	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return p.State() == StateProcessing }, time.Second, time.Millisecond)
	res, err := p.Abandon()
	require.NoError(t, err)
	assert.True(t, res.Abandoned())

	assert.ErrorIs(t, <-done, ErrInvalidTransition)
	assert.Equal(t, StateFailed, p.State())
	assert.EqualValues(t, 1, calls.Load())
}

func TestNewSimulatorRejectsBadConfig(t *testing.T) {
	_, err := NewSimulator(config.MockPayConfig{SuccessRate: 1.5})
	assert.Error(t, err)
	_, err = NewSimulator(config.MockPayConfig{SuccessRate: 0.5, Delay: -time.Second})
	assert.Error(t, err)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "method_selected", StateMethodSelected.String())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateProcessing.Terminal())
}
