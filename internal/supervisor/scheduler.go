package supervisor

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Doer describes an action to be done periodically.
type Doer interface {
	Do() error
	Shutdown()
}

// Scheduler runs the given doers on a fixed period and whenever poked,
// replacing fire-and-forget task spawning with a supervised loop that
// survives across requests.
type Scheduler struct {
	doers  []Doer
	period time.Duration
	poke   chan struct{}
	stop   chan struct{}
	done   chan struct{}
	logger log.FieldLogger
}

// NewScheduler creates a new scheduler and starts its background loop.
func NewScheduler(doers []Doer, period time.Duration, logger log.FieldLogger) *Scheduler {
	scheduler := &Scheduler{
		doers:  doers,
		period: period,
		poke:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
	}

	go scheduler.run()

	return scheduler
}

// Do requests an immediate pass outside the fixed period. It never blocks; a
// pass already requested is enough.
func (s *Scheduler) Do() error {
	select {
	case s.poke <- struct{}{}:
	default:
	}

	return nil
}

func (s *Scheduler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.doAll()
		case <-s.poke:
			s.doAll()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) doAll() {
	for _, doer := range s.doers {
		err := doer.Do()
		if err != nil {
			s.logger.WithError(err).Error("Scheduled doer failed")
		}
	}
}

// Close stops the scheduling loop and shuts down the doers, blocking until
// the in-flight pass finishes.
func (s *Scheduler) Close() error {
	close(s.stop)
	<-s.done

	for _, doer := range s.doers {
		doer.Shutdown()
	}

	return nil
}
