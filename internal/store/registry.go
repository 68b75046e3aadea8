package store

import (
	"time"

	"github.com/stgabriel/parishhub/internal/model"
)

// RecordAccessor is the narrow surface the triage handlers need for any
// submitted record, whatever its type.
type RecordAccessor interface {
	GetByID(id string) (*model.Request, error)
	MarkCompleted(id string, done bool, at time.Time) error
}

// Registry maps each request type to its accessor. It is built once at
// startup; handlers resolve the accessor by type instead of branching on
// table-name strings.
type Registry struct {
	accessors map[model.RequestType]RecordAccessor
}

func NewRegistry(requests *RequestStore) *Registry {
	r := &Registry{accessors: make(map[model.RequestType]RecordAccessor)}
	for _, t := range model.RequestTypes {
		r.accessors[t] = requestAccessor{store: requests, typ: t}
	}
	return r
}

// Lookup returns the accessor for t, or nil if t is not a known type.
func (r *Registry) Lookup(t model.RequestType) RecordAccessor {
	return r.accessors[t]
}

// requestAccessor scopes a RequestStore to a single request type. Records of
// another type are reported as absent rather than leaking across surfaces.
type requestAccessor struct {
	store *RequestStore
	typ   model.RequestType
}

func (a requestAccessor) GetByID(id string) (*model.Request, error) {
	req, err := a.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req == nil || req.Type != a.typ {
		return nil, nil
	}
	return req, nil
}

func (a requestAccessor) MarkCompleted(id string, done bool, at time.Time) error {
	return a.store.SetCompleted(id, done, at)
}
