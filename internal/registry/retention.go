package registry

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nucleus/resultpush/internal/model"
)

// terminalTracker bounds the number of terminal PushRecords retained per
// destination to perDestinationCap, evicting the least-recently-terminated
// push first, per §9's Design Notes allowance ("an implementer may add a
// bounded LRU eviction ... without changing any other contract, but must
// document it"). It never sees, and therefore never evicts, a Running key:
// track is only called from SetTerminal, after a record has already become
// terminal.
type terminalTracker struct {
	mu      sync.Mutex
	perDest map[model.DestinationId]*lru.Cache[model.TableId, struct{}]
	cap     int
	onEvict func(model.PushKey)
}

func newTerminalTracker(perDestinationCap int, onEvict func(model.PushKey)) *terminalTracker {
	return &terminalTracker{
		perDest: make(map[model.DestinationId]*lru.Cache[model.TableId, struct{}]),
		cap:     perDestinationCap,
		onEvict: onEvict,
	}
}

// track records that key's push just became terminal, evicting the oldest
// terminal entry for key.DestinationID if that destination is now over cap.
func (t *terminalTracker) track(key model.PushKey) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cache, ok := t.perDest[key.DestinationID]
	if !ok {
		destID := key.DestinationID
		c, err := lru.NewWithEvict[model.TableId, struct{}](t.cap, func(tableID model.TableId, _ struct{}) {
			t.onEvict(model.PushKey{TableID: tableID, DestinationID: destID})
		})
		if err != nil {
			// t.cap is always a positive constant supplied by the caller
			// (NewWithRetention); NewWithEvict only errors on size <= 0.
			return
		}
		cache = c
		t.perDest[key.DestinationID] = cache
	}
	cache.Add(key.TableID, struct{}{})
}
