package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/cloudspend/costcast"
	"github.com/cloudspend/costcast/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() Request {
	n := 30
	return NewRequest(
		timeseries.GenerateDates(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), n),
		timeseries.GenerateWeekly(n, 100, 0.5, 10),
		costcast.NewDefaultOptions(),
	)
}

func TestSubmitRequiresID(t *testing.T) {
	p, err := NewPool(nil)
	require.Nil(t, err)
	defer p.Close()

	_, err = p.Submit(Request{})
	assert.ErrorIs(t, err, ErrMissingRequestID)
}

func TestSubmitDeliversResponse(t *testing.T) {
	p, err := NewPool(&PoolOptions{Workers: 1})
	require.Nil(t, err)
	defer p.Close()

	req := testRequest()
	h, err := p.Submit(req)
	require.Nil(t, err)
	assert.Equal(t, req.ID, h.ID())

	select {
	case resp := <-h.Done():
		require.Nil(t, resp.Err)
		assert.Equal(t, req.ID, resp.ID)
		require.NotNil(t, resp.Results)
		assert.Len(t, resp.Results.Forecast, costcast.DefaultHorizon)
	case <-time.After(30 * time.Second):
		t.Fatal("timed out waiting for response")
	}
}

func TestCacheHitOnIdenticalInput(t *testing.T) {
	p, err := NewPool(&PoolOptions{Workers: 1})
	require.Nil(t, err)
	defer p.Close()

	req := testRequest()
	h1, err := p.Submit(req)
	require.Nil(t, err)
	first := <-h1.Done()
	require.Nil(t, first.Err)

	// same input under a fresh correlation id hits the cache
	req2 := req
	req2.ID = "second"
	h2, err := p.Submit(req2)
	require.Nil(t, err)
	second := <-h2.Done()
	require.Nil(t, second.Err)
	assert.True(t, second.Cached)
	assert.Equal(t, "second", second.ID)
	assert.Equal(t, first.Results.Forecast, second.Results.Forecast)
}

func TestCancelSuppressesDelivery(t *testing.T) {
	p, err := NewPool(&PoolOptions{Workers: 1})
	require.Nil(t, err)

	// a long history keeps the job in flight while we cancel
	n := 365
	req := NewRequest(
		timeseries.GenerateDates(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), n),
		timeseries.GenerateWeekly(n, 100, 0.5, 10),
		costcast.NewDefaultOptions(),
	)
	h, err := p.Submit(req)
	require.Nil(t, err)
	h.Cancel()

	p.Close() // waits for the in-flight job

	select {
	case <-h.Done():
		t.Fatal("cancelled handle must not receive a response")
	default:
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := testRequest()
	b := a
	b.ID = "other" // the correlation id is not part of the fingerprint

	fpA, err := a.Fingerprint()
	require.Nil(t, err)
	fpB, err := b.Fingerprint()
	require.Nil(t, err)
	assert.Equal(t, fpA, fpB)

	c := a
	c.Values = append([]float64{}, a.Values...)
	c.Values[0] += 1
	fpC, err := c.Fingerprint()
	require.Nil(t, err)
	assert.NotEqual(t, fpA, fpC)
}

func TestSubmitRacingClose(t *testing.T) {
	// submissions racing Close must either enqueue or fail with
	// ErrPoolClosed; none may panic on the closed job channel
	p, err := NewPool(&PoolOptions{Workers: 2})
	require.Nil(t, err)

	short := func() Request {
		n := 10
		return NewRequest(
			timeseries.GenerateDates(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), n),
			timeseries.GenerateWeekly(n, 100, 0.5, 10),
			costcast.NewDefaultOptions(),
		)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := p.Submit(short()); err != nil {
					assert.ErrorIs(t, err, ErrPoolClosed)
					return
				}
			}
		}()
	}
	p.Close()
	wg.Wait()
}

func TestSubmitAfterClose(t *testing.T) {
	p, err := NewPool(nil)
	require.Nil(t, err)
	p.Close()

	_, err = p.Submit(testRequest())
	assert.ErrorIs(t, err, ErrPoolClosed)
}
