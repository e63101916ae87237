package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortly/internal/database/memory"
	"shortly/internal/entity"
)

type failingClickRepo struct {
	mu       sync.Mutex
	attempts int
}

func (r *failingClickRepo) InsertBatch(ctx context.Context, clicks []entity.Click) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	return errors.New("disk on fire")
}

func (r *failingClickRepo) Analytics(ctx context.Context, linkID string) (*entity.Analytics, error) {
	return nil, entity.ErrLinkNotFound
}

func seedLink(t *testing.T, repo *memory.LinkRepository) *entity.Link {
	t.Helper()
	link := &entity.Link{
		ID:          "11111111-1111-1111-1111-111111111111",
		OriginalURL: "https://example.com",
		ShortCode:   "abc123",
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, repo.Insert(context.Background(), link))
	return link
}

func TestClickWorkerFlushesBatch(t *testing.T) {
	linkRepo := memory.NewLinkRepository()
	clickRepo := memory.NewClickRepository(linkRepo)
	link := seedLink(t, linkRepo)

	collector := NewChannelCollector(16)
	w := NewClickWorker(clickRepo, linkRepo, collector, 100, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		collector.Collect(entity.Click{
			ID:          "click-" + string(rune('a'+i)),
			LinkID:      link.ID,
			OccurredAt:  time.Now(),
			DeviceClass: entity.DeviceDesktop,
		})
	}

	// Wait for an interval flush.
	assert.Eventually(t, func() bool {
		stored, err := linkRepo.GetByID(context.Background(), link.ID)
		return err == nil && stored.Clicks == 3
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	analytics, err := clickRepo.Analytics(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), analytics.Devices.Desktop)
}

func TestClickWorkerFlushesLeftoverOnShutdown(t *testing.T) {
	linkRepo := memory.NewLinkRepository()
	clickRepo := memory.NewClickRepository(linkRepo)
	link := seedLink(t, linkRepo)

	collector := NewChannelCollector(16)
	// A long interval so only the shutdown path can flush.
	w := NewClickWorker(clickRepo, linkRepo, collector, 100, time.Hour)

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	collector.Collect(entity.Click{ID: "c1", LinkID: link.ID, OccurredAt: time.Now()})
	collector.Collect(entity.Click{ID: "c2", LinkID: link.ID, OccurredAt: time.Now()})

	// Give the worker a moment to pull the events into its batch.
	time.Sleep(50 * time.Millisecond)
	collector.Close()
	<-done

	stored, err := linkRepo.GetByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Clicks)
}

func TestClickWorkerSurvivesStoreFailure(t *testing.T) {
	linkRepo := memory.NewLinkRepository()
	link := seedLink(t, linkRepo)
	failing := &failingClickRepo{}

	collector := NewChannelCollector(16)
	w := NewClickWorker(failing, linkRepo, collector, 2, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	for i := 0; i < 4; i++ {
		collector.Collect(entity.Click{LinkID: link.ID, OccurredAt: time.Now()})
	}

	assert.Eventually(t, func() bool {
		failing.mu.Lock()
		defer failing.mu.Unlock()
		return failing.attempts >= 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	// Failed batches never bump the counter.
	stored, err := linkRepo.GetByID(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Clicks)
}

func TestChannelCollectorDropsWhenFull(t *testing.T) {
	collector := NewChannelCollector(1)

	collector.Collect(entity.Click{ID: "kept"})
	collector.Collect(entity.Click{ID: "dropped"})

	select {
	case click := <-collector.Events():
		assert.Equal(t, "kept", click.ID)
	default:
		t.Fatal("expected one buffered event")
	}

	select {
	case click := <-collector.Events():
		t.Fatalf("unexpected second event %q", click.ID)
	default:
	}
}

func TestChannelCollectorIgnoresAfterClose(t *testing.T) {
	collector := NewChannelCollector(1)
	collector.Close()
	// Must not panic on a closed channel.
	collector.Collect(entity.Click{ID: "late"})
	// Close is idempotent.
	collector.Close()
}

func TestChannelCollectorCollectDuringClose(t *testing.T) {
	// Collect races Close here the way in-flight redirects race
	// shutdown. Run with -race: the collector must never send on a
	// closed channel and the flag access must be synchronized.
	for i := 0; i < 50; i++ {
		collector := NewChannelCollector(4)

		var wg sync.WaitGroup
		start := make(chan struct{})
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for j := 0; j < 20; j++ {
					collector.Collect(entity.Click{ID: "c"})
				}
			}()
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			collector.Close()
		}()

		close(start)
		wg.Wait()
	}
}
