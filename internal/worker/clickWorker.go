package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"shortly/internal/database"
	"shortly/internal/entity"
)

// ClickWorker drains collected click events and persists them in
// batches. Any persistence failure is logged and the batch discarded;
// nothing here can reach back into the redirect path.
type ClickWorker struct {
	clickRepo database.ClickRepository
	linkRepo  database.LinkRepository
	collector *ChannelCollector
	batchSize int
	interval  time.Duration
}

func NewClickWorker(clickRepo database.ClickRepository, linkRepo database.LinkRepository, collector *ChannelCollector, batchSize int, interval time.Duration) *ClickWorker {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &ClickWorker{
		clickRepo: clickRepo,
		linkRepo:  linkRepo,
		collector: collector,
		batchSize: batchSize,
		interval:  interval,
	}
}

func (w *ClickWorker) Run(ctx context.Context) {
	logrus.Info("Click worker started")

	batch := make([]entity.Click, 0, w.batchSize)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flush(batch)
			logrus.Info("Click worker stopped")
			return
		case click, ok := <-w.collector.Events():
			if !ok {
				w.flush(batch)
				logrus.Info("Click worker stopped")
				return
			}
			batch = append(batch, click)
			if len(batch) >= w.batchSize {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

func (w *ClickWorker) flush(batch []entity.Click) {
	if len(batch) == 0 {
		return
	}

	// Shutdown may have cancelled the request context; the flush gets
	// its own deadline so leftover events still land.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.clickRepo.InsertBatch(ctx, batch); err != nil {
		logrus.Errorf("Failed to persist click batch of %d: %v", len(batch), err)
		return
	}

	perLink := make(map[string]int64)
	for _, c := range batch {
		perLink[c.LinkID]++
	}
	for linkID, n := range perLink {
		if err := w.linkRepo.IncrementClicks(ctx, linkID, n); err != nil {
			logrus.Errorf("Failed to bump click count for link %s: %v", linkID, err)
		}
	}

	logrus.Debugf("Flushed %d click(s)", len(batch))
}
