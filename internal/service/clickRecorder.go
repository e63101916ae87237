package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shortly/internal/entity"
	"shortly/internal/pkg/useragent"
	"shortly/internal/worker"
)

// ClickRecorder turns request metadata into click events and hands them
// to a collector. Record has no error return on purpose: nothing that
// happens here may influence the redirect response.
type ClickRecorder struct {
	collector worker.Collector
}

func NewClickRecorder(collector worker.Collector) *ClickRecorder {
	return &ClickRecorder{collector: collector}
}

func (r *ClickRecorder) Record(linkID string, meta entity.ClickMeta) {
	if r == nil || r.collector == nil {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("Click recording panicked for link %s: %v", linkID, rec)
		}
	}()

	click := entity.Click{
		ID:          uuid.New().String(),
		LinkID:      linkID,
		OccurredAt:  time.Now(),
		SourceIP:    meta.SourceIP,
		UserAgent:   meta.UserAgent,
		Referrer:    meta.Referrer,
		DeviceClass: useragent.Classify(meta.UserAgent),
	}
	r.collector.Collect(click)
}
