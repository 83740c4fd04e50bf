package workers

import (
	"sync"
	"time"

	"github.com/camden-git/familytreebackend/family"
	"github.com/sirupsen/logrus"
)

// Saver is the part of a storage backend the worker writes through.
type Saver interface {
	Save(people family.People) error
}

// AutosaveWorker persists tree snapshots in the background. Snapshots queued
// while a save is pending replace each other, so only the newest one is written.
type AutosaveWorker struct {
	Saver    Saver
	Delay    time.Duration
	OnError  func(error)
	Wg       sync.WaitGroup
	StopChan chan struct{}
	Mutex    sync.Mutex

	log      *logrus.Logger
	saveMu   sync.Mutex // held for the duration of a save
	notify   chan struct{}
	pending  family.People
	stopOnce sync.Once
}

func NewAutosaveWorker(saver Saver, delay time.Duration, log *logrus.Logger) *AutosaveWorker {
	w := &AutosaveWorker{
		Saver:    saver,
		Delay:    delay,
		StopChan: make(chan struct{}),
		log:      log,
		notify:   make(chan struct{}, 1),
	}
	w.Wg.Add(1)
	go w.run()
	log.WithField("delay", delay).Info("autosave worker started")
	return w
}

// Enqueue schedules snapshot to be saved. The worker takes ownership of it.
func (w *AutosaveWorker) Enqueue(snapshot family.People) {
	w.Mutex.Lock()
	w.pending = snapshot
	w.Mutex.Unlock()

	select {
	case w.notify <- struct{}{}:
	default:
	}
}

// Flush writes the pending snapshot, if any, before returning.
func (w *AutosaveWorker) Flush() error {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	w.Mutex.Lock()
	snapshot := w.pending
	w.pending = nil
	w.Mutex.Unlock()

	if snapshot == nil {
		return nil
	}
	if err := w.Saver.Save(snapshot); err != nil {
		w.log.WithError(err).Error("autosave failed")
		if w.OnError != nil {
			w.OnError(err)
		}
		return err
	}
	w.log.WithField("people", len(snapshot)).Debug("autosaved family tree")
	return nil
}

// Discard drops the pending snapshot. A save already in progress completes first.
func (w *AutosaveWorker) Discard() {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	w.Mutex.Lock()
	w.pending = nil
	w.Mutex.Unlock()
}

// Stop writes anything still pending and waits for the worker to exit.
func (w *AutosaveWorker) Stop() {
	w.stopOnce.Do(func() { close(w.StopChan) })
	w.Wg.Wait()
}

func (w *AutosaveWorker) run() {
	defer w.Wg.Done()
	for {
		select {
		case <-w.notify:
			if w.Delay > 0 {
				timer := time.NewTimer(w.Delay)
				select {
				case <-timer.C:
				case <-w.StopChan:
					timer.Stop()
					w.Flush()
					w.log.Info("autosave worker stopping: stop signal received")
					return
				}
			}
			w.Flush()
		case <-w.StopChan:
			w.Flush()
			w.log.Info("autosave worker stopping: stop signal received")
			return
		}
	}
}
