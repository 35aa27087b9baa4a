package translate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/khawasu/cloud-bridge/internal/khawasu"
)

// Directory caches the mesh device list so discovery, query and action
// requests do not each hit the mesh. Concurrent refreshes collapse into
// a single driver call.
type Directory struct {
	driver khawasu.Driver
	ttl    time.Duration
	logger *slog.Logger

	group singleflight.Group

	mu        sync.RWMutex
	devices   map[string]khawasu.RawDevice
	order     []string
	fetchedAt time.Time
}

// NewDirectory builds an empty directory. The first call to All or Get
// populates it.
func NewDirectory(driver khawasu.Driver, ttl time.Duration, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		driver:  driver,
		ttl:     ttl,
		logger:  logger,
		devices: map[string]khawasu.RawDevice{},
	}
}

// All returns every known device in mesh enumeration order, refreshing
// the cache when it is stale.
func (d *Directory) All(ctx context.Context) ([]khawasu.RawDevice, error) {
	if err := d.ensureFresh(ctx); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]khawasu.RawDevice, 0, len(d.order))
	for _, addr := range d.order {
		out = append(out, d.devices[addr])
	}
	return out, nil
}

// Get returns one device by address, refreshing the cache when it is
// stale. Unknown addresses return ErrUnknownDevice.
func (d *Directory) Get(ctx context.Context, address string) (khawasu.RawDevice, error) {
	if err := d.ensureFresh(ctx); err != nil {
		return khawasu.RawDevice{}, err
	}

	d.mu.RLock()
	dev, ok := d.devices[address]
	d.mu.RUnlock()
	if !ok {
		return khawasu.RawDevice{}, ErrUnknownDevice
	}
	return dev, nil
}

// Refresh forces a reload regardless of cache age.
func (d *Directory) Refresh(ctx context.Context) error {
	_, err, _ := d.group.Do("refresh", func() (any, error) {
		return nil, d.reload(ctx)
	})
	return err
}

func (d *Directory) ensureFresh(ctx context.Context) error {
	d.mu.RLock()
	loaded := !d.fetchedAt.IsZero()
	// A non-positive TTL disables age-based reloads: once loaded, the
	// snapshot only changes through an explicit Refresh.
	fresh := loaded && (d.ttl <= 0 || time.Since(d.fetchedAt) < d.ttl)
	d.mu.RUnlock()
	if fresh {
		return nil
	}
	return d.Refresh(ctx)
}

func (d *Directory) reload(ctx context.Context) error {
	devices, err := d.driver.ListDevices(ctx)
	if err != nil {
		return err
	}

	byAddr := make(map[string]khawasu.RawDevice, len(devices))
	order := make([]string, 0, len(devices))
	for _, dev := range devices {
		if _, seen := byAddr[dev.Address]; seen {
			continue
		}
		byAddr[dev.Address] = dev
		order = append(order, dev.Address)
	}

	d.mu.Lock()
	d.devices = byAddr
	d.order = order
	d.fetchedAt = time.Now()
	d.mu.Unlock()

	d.logger.Debug("device directory refreshed", "devices", len(order))
	return nil
}
