package sms

import (
	"context"
	"log"
	"sync"
	"time"
)

type job struct {
	mobile        string
	code          string
	expireMinutes int
}

// Dispatcher hands SMS jobs to a worker pool over a bounded channel. Enqueue
// never blocks the request path and never reports delivery failures back: the
// verification code is already committed to the store, so delivery is purely
// best-effort.
type Dispatcher struct {
	jobs        chan job
	sendTimeout time.Duration

	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewDispatcher(sender Sender, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 128
	}
	if workers <= 0 {
		workers = 1
	}
	d := &Dispatcher{
		jobs:        make(chan job, queueSize),
		sendTimeout: 10 * time.Second,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work(sender)
	}
	return d
}

// Enqueue queues a code for delivery. When the queue is full the job is
// dropped and logged; the caller still succeeds.
func (d *Dispatcher) Enqueue(mobile, code string, expireMinutes int) {
	select {
	case d.jobs <- job{mobile: mobile, code: code, expireMinutes: expireMinutes}:
	default:
		log.Printf("sms: queue full, dropping message for %s", mobile)
	}
}

// Close stops accepting jobs and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.jobs)
	})
	d.wg.Wait()
}

func (d *Dispatcher) work(sender Sender) {
	defer d.wg.Done()
	for j := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		if err := sender.Send(ctx, j.mobile, j.code, j.expireMinutes); err != nil {
			log.Printf("sms: deliver to %s: %v", j.mobile, err)
		}
		cancel()
	}
}
