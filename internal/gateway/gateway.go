// Package gateway is the client side of plan persistence: a local working
// copy on disk and shared plans on the plan server.
package gateway

import (
	"context"
	"fmt"

	"github.com/kirinyoku/seatplan/internal/snapshot"
)

type Gateway struct {
	local  *LocalStore
	remote *RemoteClient
	planID string
}

// New combines a local store with an optional remote client. planID, when
// set, names the shared plan to open instead of the local copy.
func New(local *LocalStore, remote *RemoteClient, planID string) *Gateway {
	return &Gateway{local: local, remote: remote, planID: planID}
}

func (g *Gateway) PlanID() string { return g.planID }

func (g *Gateway) SaveLocal(ctx context.Context, s *snapshot.Snapshot) error {
	return g.local.Save(ctx, s)
}

func (g *Gateway) LoadLocal(ctx context.Context) (*snapshot.Snapshot, error) {
	return g.local.Load(ctx)
}

// SaveRemote shares s and returns its id and URL. The id becomes the plan
// id of this gateway.
func (g *Gateway) SaveRemote(ctx context.Context, s *snapshot.Snapshot) (string, string, error) {
	const op = "gateway.Gateway.SaveRemote"

	if g.remote == nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrNoRemote)
	}
	res, err := g.remote.SavePlan(ctx, s)
	if err != nil {
		return "", "", err
	}
	g.planID = res.ID
	return res.ID, res.URL, nil
}

// LoadRemoteIfNeeded fetches the configured shared plan. It returns nil
// when no plan id or no server is configured.
func (g *Gateway) LoadRemoteIfNeeded(ctx context.Context) (*snapshot.Snapshot, error) {
	if g.planID == "" || g.remote == nil {
		return nil, nil
	}
	return g.remote.LoadPlan(ctx, g.planID)
}
