package scheduler

import (
	"context"
	"time"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/catalog"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
)

// Reconciler periodically recounts each manager's owns-apps counter from the
// catalog. The counter is maintained incrementally on the request path and can
// drift if the stores are mutated out of band; this closes that gap.
type Reconciler struct {
	core     *catalog.Service
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewReconciler creates a quota-counter reconciler.
func NewReconciler(core *catalog.Service, log logger.Logger, interval time.Duration) *Reconciler {
	return &Reconciler{
		core:     core,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one reconciliation immediately, then repeats on the interval.
func (r *Reconciler) Start(ctx context.Context) error {
	if err := r.Reconcile(ctx); err != nil {
		r.logger.Warn("initial quota reconciliation failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := r.Reconcile(ctx); err != nil {
					r.logger.Error("quota reconciliation failed",
						logger.Error(err))
				}
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reconciler.
func (r *Reconciler) Stop() {
	close(r.stopCh)
}

// Reconcile performs one recount pass.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	adjusted, err := r.core.Recount(ctx)
	if err != nil {
		return err
	}
	if adjusted > 0 {
		r.logger.Info("quota reconciliation corrected counters",
			logger.Int("accounts_adjusted", adjusted))
	} else {
		r.logger.Debug("quota counters consistent")
	}
	return nil
}
