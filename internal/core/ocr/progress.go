package ocr

import (
	"sync"

	"github.com/markdave123-py/LegalScan/internal/core"
)

type progressEvent struct {
	stage   string
	percent int
}

// Reporter forwards progress to a callback on its own goroutine. Report never
// blocks; when the buffer is full the event is dropped.
type Reporter struct {
	events chan progressEvent
	done   chan struct{}
	once   sync.Once
}

// NewReporter starts a reporter for fn. A nil fn yields a reporter that
// discards everything.
func NewReporter(fn core.OCRProgress, buffer int) *Reporter {
	if buffer <= 0 {
		buffer = 16
	}
	r := &Reporter{events: make(chan progressEvent, buffer), done: make(chan struct{})}
	go func() {
		defer close(r.done)
		for ev := range r.events {
			if fn != nil {
				fn(ev.stage, ev.percent)
			}
		}
	}()
	return r
}

func (r *Reporter) Report(stage string, percent int) {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	select {
	case r.events <- progressEvent{stage: stage, percent: percent}:
	default:
	}
}

// Close stops accepting events and waits until the queued ones are delivered.
func (r *Reporter) Close() {
	r.once.Do(func() { close(r.events) })
	<-r.done
}
