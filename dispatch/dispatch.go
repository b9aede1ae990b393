// Package dispatch runs forecasting invocations off the caller's goroutine.
// Each request carries a correlation id so callers can match responses to
// requests instead of relying on arrival order; superseded requests are
// cancelled by marking their handle ignorable, since the computation itself
// is not interruptible mid-flight. Completed results are cached in a
// bounded LRU keyed by a fingerprint of the full input.
package dispatch

import (
	"errors"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloudspend/costcast"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingRequestID = errors.New("request has no correlation id")
	ErrPoolClosed       = errors.New("pool is closed")
)

const (
	// DefaultWorkers bounds concurrent invocations.
	DefaultWorkers = 2
	// DefaultCacheSize bounds the fingerprint result cache.
	DefaultCacheSize = 64
)

// Request is one forecasting invocation submitted to a Pool.
type Request struct {
	// ID correlates the response with this request and must be non-empty.
	ID      string            `json:"id"`
	Dates   []string          `json:"dates"`
	Values  []float64         `json:"values"`
	Options *costcast.Options `json:"options"`
}

// NewRequest builds a Request with a generated uuid correlation id.
func NewRequest(dates []string, values []float64, opt *costcast.Options) Request {
	return Request{
		ID:      uuid.NewString(),
		Dates:   dates,
		Values:  values,
		Options: opt,
	}
}

// Fingerprint hashes the full request input (dates, values, options) so
// identical inputs map to the same cache slot. The pipeline is
// deterministic, so a fingerprint hit is always a valid answer.
func (r Request) Fingerprint() (uint64, error) {
	payload := struct {
		Dates   []string          `json:"dates"`
		Values  []float64         `json:"values"`
		Options *costcast.Options `json:"options"`
	}{r.Dates, r.Values, r.Options}
	buf, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	h.Write(buf)
	return h.Sum64(), nil
}

// Response delivers the outcome of one request. Exactly one of Results and
// Err is set.
type Response struct {
	ID      string
	Results *costcast.Results
	Err     error
	Cached  bool
}

// Handle tracks one submitted request.
type Handle struct {
	id        string
	cancelled atomic.Bool
	done      chan Response
}

// ID returns the request correlation id.
func (h *Handle) ID() string { return h.id }

// Cancel marks the handle ignorable. The computation still runs to
// completion but no response is delivered.
func (h *Handle) Cancel() { h.cancelled.Store(true) }

// Done returns the channel on which the response is delivered. Cancelled
// handles never receive a response.
func (h *Handle) Done() <-chan Response { return h.done }

type job struct {
	req    Request
	handle *Handle
}

// Pool executes forecasting requests on a fixed set of workers.
type Pool struct {
	jobs  chan job
	cache *lru.Cache[uint64, *costcast.Results]
	log   *logrus.Logger

	// mu orders submissions against Close so no send can race the channel
	// close.
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// PoolOptions configures a Pool.
type PoolOptions struct {
	Workers   int
	CacheSize int
	Log       *logrus.Logger
}

// NewPool starts a worker pool. A nil opt uses defaults with a discarded
// logger replaced by the standard logrus logger at warn level.
func NewPool(opt *PoolOptions) (*Pool, error) {
	workers := DefaultWorkers
	cacheSize := DefaultCacheSize
	var log *logrus.Logger
	if opt != nil {
		if opt.Workers > 0 {
			workers = opt.Workers
		}
		if opt.CacheSize > 0 {
			cacheSize = opt.CacheSize
		}
		log = opt.Log
	}
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}

	cache, err := lru.New[uint64, *costcast.Results](cacheSize)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		jobs:  make(chan job, workers*2),
		cache: cache,
		log:   log,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p, nil
}

// Submit queues a request. The request must carry a correlation id;
// submissions without one fail immediately.
func (p *Pool) Submit(req Request) (*Handle, error) {
	if req.ID == "" {
		return nil, ErrMissingRequestID
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}

	h := &Handle{
		id:   req.ID,
		done: make(chan Response, 1),
	}

	// serve cache hits synchronously
	if fp, err := req.Fingerprint(); err == nil {
		if res, ok := p.cache.Get(fp); ok {
			p.log.WithFields(logrus.Fields{
				"request_id":  req.ID,
				"fingerprint": fp,
			}).Debug("dispatch: cache hit")
			h.done <- Response{ID: req.ID, Results: res, Cached: true}
			return h, nil
		}
	}

	p.jobs <- job{req: req, handle: h}
	return h, nil
}

// Close stops accepting submissions and waits for in-flight requests.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		start := time.Now()
		res, err := costcast.Forecast(j.req.Dates, j.req.Values, j.req.Options)

		entry := p.log.WithFields(logrus.Fields{
			"request_id": j.req.ID,
			"duration":   time.Since(start),
		})
		if err != nil {
			entry.WithError(err).Warn("dispatch: forecast failed")
		} else {
			entry.WithField("model", res.SelectedModel.ID).Debug("dispatch: forecast complete")
			if fp, fpErr := j.req.Fingerprint(); fpErr == nil {
				p.cache.Add(fp, res)
			}
		}

		if j.handle.cancelled.Load() {
			// superseded while computing; drop the response
			continue
		}
		j.handle.done <- Response{ID: j.req.ID, Results: res, Err: err}
	}
}
