package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"go.goms.io/aks/AKSupport/pkg/catalog"
	"go.goms.io/aks/AKSupport/pkg/cluster"
	"go.goms.io/aks/AKSupport/pkg/notify"
	"go.goms.io/aks/AKSupport/pkg/policy"
	"go.goms.io/aks/AKSupport/pkg/version"
)

// CatalogFetcher returns the supported versions of a region in ascending order.
type CatalogFetcher interface {
	FetchSupportedVersions(ctx context.Context, subscriptionID, region string) (catalog.Catalog, error)
}

// Notifier delivers an event to the configured channels.
type Notifier interface {
	NotifyAll(ctx context.Context, event notify.Event) (*notify.DispatchResult, error)
}

// Options identifies the checked cluster.
type Options struct {
	SubscriptionID string
	Region         string
	ClusterName    string
	ClusterURL     string
}

// Checker runs one evaluate-and-notify pass.
type Checker struct {
	opts      Options
	source    cluster.VersionSource
	catalog   CatalogFetcher
	evaluator *policy.Evaluator
	notifier  Notifier
	logger    *logrus.Logger
	now       func() time.Time
}

// New creates a checker. A nil evaluator uses the default support policy.
func New(opts Options, source cluster.VersionSource, fetcher CatalogFetcher, evaluator *policy.Evaluator, notifier Notifier, logger *logrus.Logger) *Checker {
	if evaluator == nil {
		evaluator = policy.NewEvaluator()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Checker{
		opts:      opts,
		source:    source,
		catalog:   fetcher,
		evaluator: evaluator,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Run reads the running version, classifies it against the region catalog and notifies
// when the cluster is not supported. The returned error is set only for fatal failures,
// in which case Result.ExitCode is ExitFailure. Notification failures are recorded in
// the result but never change the exit code.
func (c *Checker) Run(ctx context.Context) (*Result, error) {
	startTime := c.now()
	result := &Result{
		ClusterName: c.opts.ClusterName,
		Region:      c.opts.Region,
		CheckedAt:   startTime,
		ExitCode:    ExitFailure,
	}
	fail := func(err error) (*Result, error) {
		result.Error = err.Error()
		result.Duration = time.Since(startTime)
		c.logger.Errorf("Support check failed: %s", err)
		return result, err
	}

	rawVersion, err := c.source.RunningVersion(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to get running version: %w", err))
	}
	running, err := version.Parse(rawVersion)
	if err != nil {
		return fail(err)
	}
	result.RunningVersion = running.String()
	c.logger.Infof("Cluster %s is running Kubernetes %s", c.opts.ClusterName, running)

	supported, err := c.catalog.FetchSupportedVersions(ctx, c.opts.SubscriptionID, c.opts.Region)
	if err != nil {
		return fail(fmt.Errorf("failed to fetch supported versions for %s: %w", c.opts.Region, err))
	}
	result.CatalogVersions = supported.Versions()
	c.logger.Infof("Supported versions in %s: %v", c.opts.Region, result.CatalogVersions)

	status, err := c.evaluator.Classify(running, supported)
	if err != nil {
		return fail(err)
	}
	result.Status = &status
	result.ExitCode = ExitCode(status)

	if status == policy.Supported {
		c.logger.Infof("Cluster %s (%s) is supported", c.opts.ClusterName, running)
	} else {
		c.logger.Warnf("Cluster %s (%s): %s. %s", c.opts.ClusterName, running, status, status.Description())
		c.notify(ctx, result, notify.NewEvent(c.opts.ClusterName, running.String(), status, c.opts.ClusterURL, c.now()))
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// notify dispatches the event and records the outcome without failing the run
func (c *Checker) notify(ctx context.Context, result *Result, event notify.Event) {
	if c.notifier == nil {
		c.logger.Warn("No notifier configured, skipping notification")
		return
	}

	dispatch, err := c.notifier.NotifyAll(ctx, event)
	result.Notifications = dispatch
	if err != nil {
		result.NotificationError = err.Error()
		c.logger.Errorf("Notification failed: %s", err)
	}
}
