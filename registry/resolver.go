package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Resolver finds the current artifact: remote registry first, local latest
// file as fallback. When both fail the caller is expected to keep running in
// degraded mode rather than exit.
type Resolver struct {
	client *Client // nil when no remote registry is configured
	dir    string
	log    *zap.Logger
}

// NewResolver builds a resolver over an optional remote client and the local
// model directory.
func NewResolver(client *Client, dir string, log *zap.Logger) *Resolver {
	return &Resolver{client: client, dir: dir, log: log}
}

// Resolve returns the newest reachable artifact.
func (r *Resolver) Resolve(ctx context.Context) (*Artifact, error) {
	if r.client != nil {
		artifact, err := r.client.FetchLatest(ctx)
		if err == nil {
			r.log.Info("loaded artifact from remote registry",
				zap.String("version", artifact.Meta.Version))
			return artifact, nil
		}
		r.log.Warn("remote registry unavailable, falling back to local artifact",
			zap.Error(err))
	}

	artifact, err := LoadLatest(r.dir)
	if err != nil {
		return nil, fmt.Errorf("no local artifact: %w", err)
	}
	r.log.Info("loaded artifact from local file",
		zap.String("version", artifact.Meta.Version))
	return artifact, nil
}
