package workflow

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/billing"
	apperrors "github.com/agbru/billcheck/internal/errors"
	"github.com/agbru/billcheck/internal/logging"
	"github.com/agbru/billcheck/internal/metrics"
)

// Controller drives the workflow synchronously against a backend client.
// Each Dispatch applies an event and then runs the resulting remote calls
// until the chain settles. Calls run outside the lock, so concurrent
// dispatches interleave exactly like asynchronous responses would and the
// ticket rules decide which response wins.
type Controller struct {
	client  api.Client
	logger  logging.Logger
	metrics *metrics.Recorder

	mu    sync.Mutex
	state State
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the logger. The default discards output.
func WithControllerLogger(l logging.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithControllerMetrics records transitions and stale responses on r.
func WithControllerMetrics(r *metrics.Recorder) ControllerOption {
	return func(c *Controller) { c.metrics = r }
}

// NewController returns a controller in the initial state.
func NewController(client api.Client, opts ...ControllerOption) *Controller {
	c := &Controller{
		client: client,
		logger: logging.Nop(),
		state:  New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies ev and runs every effect it leads to. It returns the
// settled state and the last error raised along the chain. A response that
// lost to a newer request yields ErrStaleResponse.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (State, error) {
	s, eff, err := c.apply(ev)
	for eff != nil && err == nil {
		resp := Execute(ctx, c.client, eff)
		s, eff, err = c.apply(resp)
	}
	return s, err
}

func (c *Controller) apply(ev Event) (State, Effect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	next, eff, err := Apply(prev, ev)
	if errors.Is(err, ErrStaleResponse) {
		class := ResponseClass(ev)
		c.logger.Debug("discarded stale response", logging.String("class", class))
		c.metrics.StaleDiscarded(class)
		return next, nil, err
	}
	c.state = next
	if next.Step != prev.Step {
		c.metrics.Transition(next.Step.String())
		c.logger.Debug("workflow step changed",
			logging.String("from", prev.Step.String()),
			logging.String("to", next.Step.String()))
	}
	return next, eff, err
}

// ResponseClass names the ticket class of a response event, or "unknown".
func ResponseClass(ev Event) string {
	switch e := ev.(type) {
	case Uploaded:
		return e.Ticket.Class.String()
	case Extracted:
		return e.Ticket.Class.String()
	case SearchCompleted:
		return e.Ticket.Class.String()
	case Compared:
		return e.Ticket.Class.String()
	default:
		return "unknown"
	}
}

// Start probes the backend and loads the unfiltered facility list
// concurrently. A failed probe is logged and does not fail Start.
func (c *Controller) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := c.Dispatch(gctx, HealthRequested{}); err != nil && !apperrors.IsContextError(err) {
			c.logger.Warn("backend health check failed", logging.Err(err))
		}
		return nil
	})
	g.Go(func() error {
		_, err := c.Dispatch(gctx, SearchRequested{})
		return err
	})
	return g.Wait()
}

// Submit uploads a bill and extracts its line items.
func (c *Controller) Submit(ctx context.Context, name string, data []byte) (State, error) {
	return c.Dispatch(ctx, FileSubmitted{Name: name, Data: data})
}

// Search replaces the facility list with the results for query.
func (c *Controller) Search(ctx context.Context, query string) (State, error) {
	return c.Dispatch(ctx, SearchRequested{Query: query})
}

// Select chooses a facility by id. Ids missing from the loaded list are
// fetched from the backend.
func (c *Controller) Select(ctx context.Context, id string) (State, error) {
	f, ok := c.State().Facilities.Lookup(id)
	if !ok && id != "" {
		var err error
		if f, err = c.client.GetHospital(ctx, id); err != nil {
			return c.State(), err
		}
	}
	return c.Dispatch(ctx, FacilitySelected{Facility: f})
}

// ClearSelection drops the current selection.
func (c *Controller) ClearSelection(ctx context.Context) (State, error) {
	return c.Dispatch(ctx, SelectionCleared{})
}

// Advance moves from review to the hospital step.
func (c *Controller) Advance(ctx context.Context) (State, error) {
	return c.Dispatch(ctx, Advanced{})
}

// Back returns from the hospital step to review.
func (c *Controller) Back(ctx context.Context) (State, error) {
	return c.Dispatch(ctx, WentBack{})
}

// Compare runs the comparison for the current selection.
func (c *Controller) Compare(ctx context.Context, req CompareRequested) (State, error) {
	return c.Dispatch(ctx, req)
}

// Reset discards the run.
func (c *Controller) Reset(ctx context.Context) (State, error) {
	return c.Dispatch(ctx, ResetRequested{})
}

// EditItem replaces line item i.
func (c *Controller) EditItem(ctx context.Context, i int, it billing.LineItem) (State, error) {
	return c.Dispatch(ctx, ItemEdited{Index: i, Item: it})
}

// RemoveItem deletes line item i.
func (c *Controller) RemoveItem(ctx context.Context, i int) (State, error) {
	return c.Dispatch(ctx, ItemRemoved{Index: i})
}

// AddItem appends a line item.
func (c *Controller) AddItem(ctx context.Context, it billing.LineItem) (State, error) {
	return c.Dispatch(ctx, ItemAdded{Item: it})
}

// Health probes the backend.
func (c *Controller) Health(ctx context.Context) (State, error) {
	return c.Dispatch(ctx, HealthRequested{})
}
