package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcoot/petbattle/internal/collaborators"
	"github.com/mcoot/petbattle/internal/model"
)

type entity struct {
	owner      model.ActorID
	attributes model.AttributeSet
}

// Registry is an in-process owner registry and attribute store.
// It serves the dev network and tests.
type Registry struct {
	mu       sync.RWMutex
	entities map[model.ActorID]entity

	// err, when set, is returned by every query
	err error
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		entities: make(map[model.ActorID]entity),
	}
}

var (
	_ collaborators.OwnerRegistry  = (*Registry)(nil)
	_ collaborators.AttributeStore = (*Registry)(nil)
)

// SetEntity registers or replaces an entity with its owner and attributes
func (r *Registry) SetEntity(entityID, owner model.ActorID, attrs ...model.AttributeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[entityID] = entity{owner: owner, attributes: model.NewAttributeSet(attrs...)}
}

// SetAttributes replaces the attributes of a known entity
func (r *Registry) SetAttributes(entityID model.ActorID, attrs ...model.AttributeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entities[entityID]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrUnknownActor, entityID)
	}
	e.attributes = model.NewAttributeSet(attrs...)
	r.entities[entityID] = e
	return nil
}

// Fail makes every following query return err. Pass nil to recover.
func (r *Registry) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Owner returns the owner of entityID
func (r *Registry) Owner(ctx context.Context, entityID model.ActorID) (model.ActorID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return "", r.err
	}
	e, ok := r.entities[entityID]
	if !ok {
		return "", fmt.Errorf("%w: %s", model.ErrUnknownActor, entityID)
	}
	return e.owner, nil
}

// Attributes returns the attributes of entityID. Unknown entities have none.
func (r *Registry) Attributes(ctx context.Context, storeID, entityID model.ActorID) (model.AttributeSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	return model.NewAttributeSet(r.entities[entityID].attributes...), nil
}

// Handle answers a protocol request addressed to address. Owner queries
// are answered for the entity at address; attribute queries for the
// entity named in the request.
func (r *Registry) Handle(ctx context.Context, address model.ActorID, req collaborators.Request) (collaborators.Reply, error) {
	switch req.Kind {
	case collaborators.KindOwner:
		owner, err := r.Owner(ctx, address)
		if err != nil {
			return collaborators.Reply{}, err
		}
		return collaborators.Reply{Kind: collaborators.KindOwner, Owner: owner}, nil

	case collaborators.KindGetAttributes:
		attrs, err := r.Attributes(ctx, address, req.EntityID)
		if err != nil {
			return collaborators.Reply{}, err
		}
		return collaborators.Reply{Kind: collaborators.KindAttributes, Attributes: attrs}, nil
	}

	return collaborators.Reply{}, fmt.Errorf("%w: %q", model.ErrUnsupportedRequest, req.Kind)
}
