// Package agent runs provisioning passes end to end: fetch metadata,
// normalize it, configure the host, record the outcome.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/netinit-io/netinit/internal/config"
	"github.com/netinit-io/netinit/internal/hostnet"
	"github.com/netinit-io/netinit/internal/log"
	"github.com/netinit-io/netinit/internal/metadata"
	"github.com/netinit-io/netinit/internal/model"
	"github.com/netinit-io/netinit/internal/plugin"
	"github.com/netinit-io/netinit/internal/source"
	"github.com/netinit-io/netinit/internal/storage"
)

// Agent wires the metadata source, the normalization builder, the
// configuration plugin and the run history together.
type Agent struct {
	cfg    *config.Config
	store  *storage.RunStore
	logger *slog.Logger
}

// New creates an agent and opens its run-history store.
func New(cfg *config.Config) (*Agent, error) {
	store, err := storage.NewRunStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return &Agent{
		cfg:    cfg,
		store:  store,
		logger: log.With("component", "agent"),
	}, nil
}

// Close releases the run-history store.
func (a *Agent) Close() error {
	return a.store.Close()
}

// Store exposes the run history for reporting commands.
func (a *Agent) Store() *storage.RunStore {
	return a.store
}

// Source returns the metadata source selected by the configuration.
// A config-drive file takes precedence over the HTTP service.
func (a *Agent) Source() source.Source {
	if a.cfg.MetadataFile != "" {
		return &source.FileSource{Path: a.cfg.MetadataFile}
	}
	timeout := time.Duration(a.cfg.RequestTimeout) * time.Second
	return source.NewHTTPSource(a.cfg.MetadataURL, timeout)
}

// NetworkDetails fetches and normalizes the metadata without touching
// the host. A nil snapshot with a nil error means the source had no
// network information.
func (a *Agent) NetworkDetails(ctx context.Context) (*model.NetworkDetails, error) {
	src := a.Source()
	data, err := src.NetworkData(ctx)
	if errors.Is(err, source.ErrNotAvailable) {
		a.logger.Info("no network metadata available", "source", src.Name())
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	adapters, err := hostnet.Adapters()
	if err != nil {
		a.logger.Warn("failed to enumerate host adapters, MAC recovery disabled", "error", err)
	}

	builder := metadata.NewOpenStackBuilder(data, metadata.WithAdapters(adapters))
	return builder.NetworkDetails()
}

// ProvisionOnce runs a full provisioning pass and records it. The
// returned run always reflects what happened; the error reports a
// failure that aborted the pass.
func (a *Agent) ProvisionOnce(ctx context.Context) (*model.ProvisionRun, error) {
	run := &model.ProvisionRun{
		Source:    a.Source().Name(),
		StartedAt: time.Now(),
	}

	details, err := a.NetworkDetails(ctx)
	if err != nil {
		return a.finishRun(run, model.RunStatusFailed, err)
	}
	if details == nil {
		return a.finishRun(run, model.RunStatusNoMetadata, nil)
	}
	run.LinksTotal = len(details.Links())

	networkConfig := plugin.NewNetworkConfig(a.configurer())
	result, err := networkConfig.Apply(details)
	if err != nil {
		return a.finishRun(run, model.RunStatusFailed, err)
	}

	run.LinksConfigured = result.ConfiguredLinks
	run.RebootRequired = result.RebootRequired
	return a.finishRun(run, model.RunStatusSucceeded, nil)
}

func (a *Agent) configurer() hostnet.Configurer {
	if a.cfg.AdapterBackend == "noop" {
		return &hostnet.NoopConfigurer{}
	}
	return &hostnet.IPRouteConfigurer{}
}

func (a *Agent) finishRun(run *model.ProvisionRun, status string, cause error) (*model.ProvisionRun, error) {
	run.Status = status
	run.CompletedAt = time.Now()
	if cause != nil {
		run.ErrorMessage = cause.Error()
	}

	if err := a.store.RecordRun(run); err != nil {
		a.logger.Error("failed to record provisioning run", "error", err)
	}

	a.logger.Info("provisioning pass finished",
		"status", run.Status,
		"links_total", run.LinksTotal,
		"links_configured", run.LinksConfigured,
		"reboot_required", run.RebootRequired)
	return run, cause
}
