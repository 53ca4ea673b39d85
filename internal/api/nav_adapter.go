package api

import (
	"sync"

	"github.com/soaringjerry/SheHuMaan/internal/nav"
)

// outbox collects the navigation and notifications a service emits during
// one request so the handler can put them in the response.
type outbox struct {
	mu  sync.Mutex
	rec nav.Recorder
}

func (o *outbox) Navigate(target nav.View) {
	o.mu.Lock()
	o.rec.Navigate(target)
	o.mu.Unlock()
}

func (o *outbox) Notify(n nav.Notification) {
	o.mu.Lock()
	o.rec.Notify(n)
	o.mu.Unlock()
}

func (o *outbox) drain() nav.Recorder {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.rec
	o.rec = nav.Recorder{}
	return out
}

var (
	_ nav.Navigator = (*outbox)(nil)
	_ nav.Notifier  = (*outbox)(nil)
)
