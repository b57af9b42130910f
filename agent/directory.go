package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/agentweave/internal/metrics"
	"github.com/BaSui01/agentweave/store"
	"github.com/BaSui01/agentweave/workflow"
)

// Directory resolves (agent id, owner) pairs against the store, fronted by
// an optional handle cache so validation of a many-step workflow does not
// hit the database once per step.
type Directory struct {
	repo    *store.Repository
	cache   *HandleCache
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewDirectory creates an agent directory. cache and collector may be nil.
func NewDirectory(repo *store.Repository, cache *HandleCache, collector *metrics.Collector, logger *zap.Logger) *Directory {
	return &Directory{
		repo:    repo,
		cache:   cache,
		metrics: collector,
		logger:  logger.With(zap.String("component", "agent_directory")),
	}
}

// Resolve implements workflow.AgentDirectory. Cache entries are scoped to
// the owner, so one user's agents are never visible through another's
// lookups.
func (d *Directory) Resolve(ctx context.Context, agentID, ownerID string) (*workflow.AgentInfo, error) {
	if d.cache != nil {
		if info, ok := d.cache.Get(ctx, agentID, ownerID); ok {
			d.metrics.RecordCacheHit("agent_handle")
			return info, nil
		}
		d.metrics.RecordCacheMiss("agent_handle")
	}

	agent, err := d.repo.GetAgent(ctx, agentID, ownerID)
	if err != nil {
		return nil, err
	}

	info := &workflow.AgentInfo{
		ID:     agent.ID,
		Name:   agent.Name,
		Status: string(agent.Status),
		Active: agent.Status == store.AgentActive,
	}

	if d.cache != nil {
		d.cache.Put(ctx, ownerID, info)
	}

	return info, nil
}
