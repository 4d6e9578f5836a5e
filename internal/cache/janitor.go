package cache

import "time"

// Sweeper is anything the janitor can clear expired entries from.
type Sweeper interface {
	Sweep() int
}

// Janitor periodically sweeps expired entries out of registered caches.
type Janitor struct {
	sweepers []Sweeper
	stop     chan struct{}
	done     chan struct{}
}

func NewJanitor() *Janitor {
	return &Janitor{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds a cache to the sweep rotation. Not safe to call after Start.
func (j *Janitor) Register(s Sweeper) {
	j.sweepers = append(j.sweepers, s)
}

// Start begins sweeping on the given interval until Stop is called.
func (j *Janitor) Start(interval time.Duration) {
	go func() {
		defer close(j.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				for _, s := range j.sweepers {
					s.Sweep()
				}
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to finish.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
