package list

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/linkview/internal/ir"
)

// Session is the storage connection a list belongs to.
// The list only asks whether a write transaction is active.
type Session interface {
	IsInWriteTransaction() bool
}

// Links is the storage-backed ordered collection of object references that
// a List views. Positions are zero-based and dense.
//
// Implementations report storage failures as errors; index bounds are
// checked by List before any call.
type Links interface {
	// IsAttached reports whether the collection still exists.
	IsAttached(ctx context.Context) (bool, error)

	Size(ctx context.Context) (int, error)
	Get(ctx context.Context, index int) (ir.ObjectRef, error)
	Set(ctx context.Context, index int, ref ir.ObjectRef) error
	Add(ctx context.Context, ref ir.ObjectRef) error
	Insert(ctx context.Context, index int, ref ir.ObjectRef) error
	Remove(ctx context.Context, index int) error
}

// Codec converts between caller values and stored object references.
type Codec interface {
	// Encode resolves v to an object of the given type, creating it if the
	// codec supports that. It fails if v cannot be resolved to that type.
	Encode(ctx context.Context, v ir.IRValue, schema ir.ObjectSchema) (ir.ObjectRef, error)

	// Decode materializes the referenced object as a caller value.
	Decode(ctx context.Context, ref ir.ObjectRef, schema ir.ObjectSchema) (ir.IRValue, error)
}

// List is an array-like view over a link collection.
//
// List holds no storage of its own; several Lists may view the same Links
// and all observe the same contents.
type List struct {
	session Session
	links   Links
	schema  ir.ObjectSchema
	codec   Codec
	logger  *slog.Logger
}

// Option configures a List.
type Option func(*List)

// WithLogger sets the logger used for mutation tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(l *List) {
		l.logger = logger
	}
}

// New creates a List of objects of the given schema.
func New(session Session, links Links, schema ir.ObjectSchema, codec Codec, opts ...Option) *List {
	l := &List{
		session: session,
		links:   links,
		schema:  schema,
		codec:   codec,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Schema returns the element type of the list.
func (l *List) Schema() ir.ObjectSchema {
	return l.schema
}

// verifyAttached fails with a DETACHED error unless the backing collection
// is still live. A failing check is a storage error, not a detachment.
func (l *List) verifyAttached(ctx context.Context, op string) error {
	attached, err := l.links.IsAttached(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !attached {
		return newDetachedError(op)
	}
	return nil
}

// verifyMutable runs the attachment check and then requires an active
// write transaction.
func (l *List) verifyMutable(ctx context.Context, op string) error {
	if err := l.verifyAttached(ctx, op); err != nil {
		return err
	}
	if !l.session.IsInWriteTransaction() {
		return newTransactionRequiredError(op)
	}
	return nil
}

// encodeAll encodes every value before the caller touches the collection.
// first is the argument position of values[0], used in error messages.
func (l *List) encodeAll(ctx context.Context, op string, values []ir.IRValue, first int) ([]ir.ObjectRef, error) {
	refs := make([]ir.ObjectRef, len(values))
	for i, v := range values {
		ref, err := l.codec.Encode(ctx, v, l.schema)
		if err != nil {
			return nil, newEncodeError(op, first+i, err)
		}
		refs[i] = ref
	}
	return refs, nil
}

func (l *List) decodeAt(ctx context.Context, index int) (ir.IRValue, error) {
	ref, err := l.links.Get(ctx, index)
	if err != nil {
		return nil, err
	}
	return l.codec.Decode(ctx, ref, l.schema)
}
