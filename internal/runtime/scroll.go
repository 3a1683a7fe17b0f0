package runtime

import (
	"context"
	"time"

	"github.com/aretw0/shift/pkg/domain"
)

// evaluateScroll runs on every (debounced) scroll or resize notification.
// It resolves the occupied range and feeds it to the machine, then publishes
// the normalized in-range progress when scroll animation is enabled.
//
// The scroll path calls the machine directly: the range observation is the
// trigger event itself, so neither delay nor the active-space gate applies.
func (e *Engine) evaluateScroll() {
	frac, err := e.fraction()
	if err != nil {
		e.logger.Debug("scroll evaluation skipped", "err", err)
		return
	}

	idx := domain.LocateRange(e.cfg.Ranges, frac)
	if len(e.cfg.Ranges) > 0 {
		e.machine.EvaluateRange(idx)
	}

	if e.cfg.ScrollAnimate {
		progress := domain.RangeProgress(e.cfg.Ranges, idx, frac)
		if err := e.host.ApplyProgress(e.id, progress); err != nil {
			e.logger.Warn("failed to apply scroll progress", "err", err)
		}
		if e.hooks.OnScrollProgress != nil {
			e.hooks.OnScrollProgress(context.Background(), &domain.ProgressEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventScrollProgress},
				ElementID: e.id,
				Progress:  progress,
			})
		}
	}
}
