package snapshot

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"starbot/internal/models"
	"starbot/internal/providers"
	"starbot/internal/snapshot/interfaces"
	"starbot/internal/structures"
	"starbot/internal/week"
)

// Scheduler runs the periodic persistence and retention jobs. Persists are
// skipped while the store is clean; prune drops day buckets older than the
// configured retention.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	store       models.StarStoreInterface
	fileManager *FileManager
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if !s.store.Dirty() {
			s.logger.Debugf(providers.TypeApp, "Store unchanged, skipping persist")
			return
		}
		start := time.Now()
		err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
			return
		}
		s.metrics.ObservePersistenceDuration(time.Since(start))
		s.logger.Infof(providers.TypeApp, "Persisted data to file %s", s.config.Persistence.FilePath)
	})

	if s.config.Tracker.Retention > 0 && s.config.Tracker.PruneInterval > 0 {
		loc, err := time.LoadLocation(s.config.Tracker.Timezone)
		if err != nil {
			s.logger.Warnf(providers.TypeApp, "Invalid timezone %q for prune job, using UTC", s.config.Tracker.Timezone)
			loc = time.UTC
		}
		s.cron.AddFunc(gron.Every(s.config.Tracker.PruneInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			cutoff := week.DayKey(time.Now().Add(-s.config.Tracker.Retention), loc)
			removed := s.store.PruneBefore(cutoff)
			if removed > 0 {
				s.logger.Infof(providers.TypeApp, "Pruned %d day buckets older than %s", removed, cutoff)
			}
		})
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting stars to file...")
	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, store models.StarStoreInterface, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		store:       store,
		fileManager: fileManager,
		metrics:     metrics,
	}
}
