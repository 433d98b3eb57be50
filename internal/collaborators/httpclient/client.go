package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mcoot/petbattle/internal/collaborators"
	"github.com/mcoot/petbattle/internal/model"
)

// Directory maps actor addresses to the URL their messages are posted to
type Directory struct {
	// Endpoints holds explicit per-actor URLs
	Endpoints map[model.ActorID]string

	// BaseURL, when set, serves actors without an explicit endpoint
	// at BaseURL/{address}/handle
	BaseURL string
}

// Resolve returns the URL for address
func (d Directory) Resolve(address model.ActorID) (string, error) {
	if u, ok := d.Endpoints[address]; ok {
		return u, nil
	}
	if d.BaseURL == "" {
		return "", fmt.Errorf("%w: %s", model.ErrUnknownActor, address)
	}
	return strings.TrimSuffix(d.BaseURL, "/") + "/" + url.PathEscape(address.String()) + "/handle", nil
}

// Client talks to collaborators over HTTP using the JSON message protocol.
// Calls have no timeout of their own; a stalled collaborator stalls the caller.
type Client struct {
	directory  Directory
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a collaborator client
func New(directory Directory, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		directory:  directory,
		httpClient: httpClient,
		logger:     logger,
	}
}

var (
	_ collaborators.OwnerRegistry  = (*Client)(nil)
	_ collaborators.AttributeStore = (*Client)(nil)
)

// Owner sends the owner query to the entity itself
func (c *Client) Owner(ctx context.Context, entityID model.ActorID) (model.ActorID, error) {
	reply, err := c.call(ctx, entityID, collaborators.OwnerRequest(), collaborators.KindOwner)
	if err != nil {
		return "", err
	}
	if reply.Owner.IsZero() {
		return "", fmt.Errorf("%w: owner reply from %s names no owner", model.ErrUnexpectedReply, entityID)
	}
	return reply.Owner, nil
}

// Attributes asks the attribute store for the entity's attributes
func (c *Client) Attributes(ctx context.Context, storeID, entityID model.ActorID) (model.AttributeSet, error) {
	reply, err := c.call(ctx, storeID, collaborators.AttributesRequest(entityID), collaborators.KindAttributes)
	if err != nil {
		return nil, err
	}
	return model.NewAttributeSet(reply.Attributes...), nil
}

func (c *Client) call(ctx context.Context, address model.ActorID, req collaborators.Request, wantKind string) (collaborators.Reply, error) {
	endpoint, err := c.directory.Resolve(address)
	if err != nil {
		return collaborators.Reply{}, err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return collaborators.Reply{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return collaborators.Reply{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("collaborator request failed",
			slog.String("address", address.String()),
			slog.String("kind", req.Kind),
			slog.String("error", err.Error()),
		)
		return collaborators.Reply{}, fmt.Errorf("%w: %s: %v", model.ErrCollaboratorUnavailable, address, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return collaborators.Reply{}, fmt.Errorf("%w: failed to read response: %v", model.ErrCollaboratorUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		return collaborators.Reply{}, fmt.Errorf("%w: %s: HTTP %d: %s",
			model.ErrCollaboratorUnavailable, address, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var reply collaborators.Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return collaborators.Reply{}, fmt.Errorf("%w: %v", model.ErrUnexpectedReply, err)
	}
	if reply.Kind != wantKind {
		return collaborators.Reply{}, fmt.Errorf("%w: want %q, got %q", model.ErrUnexpectedReply, wantKind, reply.Kind)
	}

	c.logger.Debug("collaborator replied",
		slog.String("address", address.String()),
		slog.String("kind", reply.Kind),
	)

	return reply, nil
}
