package collaborators

import (
	"context"

	"github.com/mcoot/petbattle/internal/model"
)

// OwnerRegistry answers who owns an entity. The query is sent to the
// entity's own address.
type OwnerRegistry interface {
	Owner(ctx context.Context, entityID model.ActorID) (model.ActorID, error)
}

// AttributeStore answers which attributes an entity has bought
type AttributeStore interface {
	Attributes(ctx context.Context, storeID, entityID model.ActorID) (model.AttributeSet, error)
}

// Message kinds of the collaborator protocol
const (
	KindOwner         = "owner"
	KindGetAttributes = "get_attributes"
	KindAttributes    = "attributes"
)

// Request is a message sent to a collaborator
type Request struct {
	Kind     string        `json:"kind"`
	EntityID model.ActorID `json:"entity_id,omitempty"`
}

// Reply is a collaborator's answer. Only the field matching Kind is set.
type Reply struct {
	Kind       string             `json:"kind"`
	Owner      model.ActorID      `json:"owner,omitempty"`
	Attributes []model.AttributeID `json:"attributes,omitempty"`
}

// OwnerRequest builds the owner query
func OwnerRequest() Request {
	return Request{Kind: KindOwner}
}

// AttributesRequest builds the attribute query for entityID
func AttributesRequest(entityID model.ActorID) Request {
	return Request{Kind: KindGetAttributes, EntityID: entityID}
}
