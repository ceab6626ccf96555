package cache

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper periodically drops expired entries from a set of caches so a
// long-running process does not accumulate dead data between reads.
type Sweeper struct {
	caches   []*Cache
	interval time.Duration
	logger   *logrus.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewSweeper(interval time.Duration, logger *logrus.Logger, caches ...*Cache) *Sweeper {
	if logger == nil {
		logger = logrus.New()
	}
	return &Sweeper{
		caches:   caches,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop terminates the loop and waits for it to finish.
func (s *Sweeper) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			for _, c := range s.caches {
				if removed := c.Sweep(); removed > 0 {
					s.logger.WithFields(logrus.Fields{"cache": c.Name(), "removed": removed}).Info("Swept expired cache entries")
				}
			}
		}
	}
}
