package fleet

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ytfleet/internal/config"
	"ytfleet/internal/metrics"
)

// Orchestrator launches worker container groups. It guarantees that no
// two groups with the same name run at once: every creation is preceded
// by a check that deletes a stale group or refuses a running one.
type Orchestrator struct {
	api    ContainerAPI
	cfg    config.Config
	rnd    *rand.Rand
	logger *zap.Logger
}

// NewOrchestrator constructs an Orchestrator over the given container API.
// rnd picks the region for single-container launches.
func NewOrchestrator(api ContainerAPI, cfg config.Config, rnd *rand.Rand, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		api:    api,
		cfg:    cfg,
		rnd:    rnd,
		logger: logger,
	}
}

// StartFleet launches one container group per batch. The precheck pass
// runs to completion over every batch before any creation begins; each
// pass is bounded by its own concurrency cap. A failing batch does not
// block or roll back its siblings; its error is joined into the returned
// error alongside the groups that did launch.
func (o *Orchestrator) StartFleet(ctx context.Context, batches []Batch, updateType string) ([]*Group, error) {
	batchErrs := make([]error, len(batches))

	// Precheck every group name before creating any. The errgroup here is
	// zero-value on purpose: one batch failing must not cancel the rest.
	var precheck errgroup.Group
	precheck.SetLimit(o.cfg.Fleet.PrecheckParallel)
	for i, b := range batches {
		precheck.Go(func() error {
			if err := o.ensureNotRunning(ctx, b.Name); err != nil {
				batchErrs[i] = fmt.Errorf("precheck %s: %w", b.Name, err)
			}
			return nil
		})
	}
	_ = precheck.Wait()

	var (
		mu     sync.Mutex
		groups []*Group
		create errgroup.Group
	)
	create.SetLimit(o.cfg.Fleet.CreateParallel)
	for i, b := range batches {
		if batchErrs[i] != nil {
			continue
		}
		create.Go(func() error {
			spec := buildSpec(o.cfg, b.Name, b.Region, updateArgs(updateType, b.ChannelIDs))
			group, err := o.api.Create(ctx, spec)
			if err != nil {
				metrics.ObserveLaunch("error")
				batchErrs[i] = fmt.Errorf("create %s: %w", b.Name, err)
				return nil
			}
			metrics.ObserveLaunch("ok")
			o.logger.Info("started fleet container",
				zap.String("name", b.Name),
				zap.String("region", b.Region),
				zap.Int("channels", len(b.ChannelIDs)),
			)
			mu.Lock()
			groups = append(groups, group)
			mu.Unlock()
			return nil
		})
	}
	_ = create.Wait()

	return groups, errors.Join(batchErrs...)
}

// StartOne launches a single container group with the given args, in a
// region chosen at random, reusing the same precheck-then-create path.
func (o *Orchestrator) StartOne(ctx context.Context, args []string) (*Group, error) {
	name := o.cfg.Container.Name
	region := o.cfg.Fleet.Regions[o.rnd.Intn(len(o.cfg.Fleet.Regions))]
	o.logger.Info("starting container",
		zap.String("name", name),
		zap.String("image", o.cfg.Container.Image),
		zap.Strings("args", args),
	)

	if err := o.ensureNotRunning(ctx, name); err != nil {
		return nil, err
	}
	group, err := o.api.Create(ctx, buildSpec(o.cfg, name, region, args))
	if err != nil {
		metrics.ObserveLaunch("error")
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	metrics.ObserveLaunch("ok")
	return group, nil
}

// ensureNotRunning refuses to race a live group and deletes a stale one.
func (o *Orchestrator) ensureNotRunning(ctx context.Context, name string) error {
	group, err := o.api.GetByName(ctx, o.cfg.Container.ResourceGroup, name)
	if err != nil {
		return fmt.Errorf("get group %s: %w", name, err)
	}
	if group == nil {
		return nil
	}
	if group.State == StateRunning {
		return &ConflictError{Name: name}
	}
	o.logger.Info("deleting stale container group",
		zap.String("name", name),
		zap.String("state", group.State),
	)
	if err := o.api.Delete(ctx, group.ID); err != nil {
		return fmt.Errorf("delete stale group %s: %w", name, err)
	}
	return nil
}
