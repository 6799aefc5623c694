package vietqr

import (
	"context"
	"sync"

	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
	"github.com/ityouth/xtn-storefront/pkg/orderapi"
)

// ErrSuperseded is returned when a newer Render call started before this one
// finished; the stale result must be discarded, never applied.
var ErrSuperseded = pkgerrors.New(pkgerrors.CodeStateConflict, "qr generation superseded by a newer request")

// Result is the outcome of one QR generation.
type Result struct {
	// DataURL is the rendered image when generation succeeded.
	DataURL string
	// FallbackURL is always populated for a complete intent so the UI can
	// degrade to a plain <img> when DataURL is empty.
	FallbackURL string
	// Err carries the generation failure, nil on success. The fallback URL
	// remains usable alongside it.
	Err error
}

// Renderer serializes QR generation for one checkout surface. Overlapping
// calls race on the network, so each call takes a generation number, cancels
// the in-flight predecessor, and results from superseded generations are
// dropped.
type Renderer struct {
	client *Client

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewRenderer wraps the client with supersede tracking.
func NewRenderer(client *Client) *Renderer {
	return &Renderer{client: client}
}

// Render generates a QR image for the intent. If another Render starts while
// this one is in flight, the earlier call returns ErrSuperseded.
func (r *Renderer) Render(ctx context.Context, intent *orderapi.PaymentIntent) (*Result, error) {
	if r == nil || r.client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vietqr renderer not configured")
	}

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	callCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	defer cancel()

	dataURL, genErr := r.client.Generate(callCtx, intent)

	r.mu.Lock()
	current := r.gen == gen
	if current {
		r.cancel = nil
	}
	r.mu.Unlock()

	if !current {
		return nil, ErrSuperseded
	}

	// A structurally incomplete intent has no usable fallback either.
	if typed := pkgerrors.As(genErr); typed != nil && typed.Code() == pkgerrors.CodeValidation {
		return nil, genErr
	}

	return &Result{
		DataURL:     dataURL,
		FallbackURL: r.client.FallbackURL(intent),
		Err:         genErr,
	}, nil
}
