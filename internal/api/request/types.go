package request

// RegisterRequest is the request body for registering an entity
type RegisterRequest struct {
	EntityID string `json:"entity_id"`
}

// MoveRequest is the request body for making a move
type MoveRequest struct {
	Side   string `json:"side"`
	Action string `json:"action"`
}

// SetEntityRequest is the request body for adding a dev network entity
type SetEntityRequest struct {
	Owner      string   `json:"owner"`
	Attributes []uint32 `json:"attributes,omitempty"`
}

// CredentialsRequest is the request body for claiming an address or
// logging in to it
type CredentialsRequest struct {
	Address string `json:"address"`
	Secret  string `json:"secret"`
}
