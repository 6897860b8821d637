package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mklimuk/semester-pilot/pkg/dataset"
	"github.com/mklimuk/semester-pilot/pkg/model"
)

// DefaultKey is the storage key of the state blob.
const DefaultKey = "semester4_sys_v3"

// ErrStale is returned by Save when the stored blob was written by someone
// else since this gateway last read or wrote it.
var ErrStale = errors.New("stored state changed since it was loaded")

// KV is the byte store the gateway writes through. Every write of a key
// bumps its revision; revision 0 means the key is absent.
type KV interface {
	GetWithRevision(ctx context.Context, key string) ([]byte, int64, error)
	Revision(ctx context.Context, key string) (int64, error)
	CompareAndPut(ctx context.Context, key string, value []byte, rev int64) (int64, bool, error)
}

// Gateway reads and writes the whole RootState as one JSON document.
type Gateway struct {
	kv         KV
	key        string
	mergeDepth int
	logger     *zap.Logger
	now        func() time.Time

	mu  sync.Mutex
	rev int64 // revision of the blob last read or written
}

type Option func(*Gateway)

func WithKey(key string) Option {
	return func(g *Gateway) {
		if key != "" {
			g.key = key
		}
	}
}

// WithMergeDepth sets how many object levels of a stored blob are merged
// over the defaults. Values below 1 are treated as 1.
func WithMergeDepth(depth int) Option {
	return func(g *Gateway) {
		if depth < 1 {
			depth = 1
		}
		g.mergeDepth = depth
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// NewGateway creates a gateway over kv.
func NewGateway(kv KV, logger *zap.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		kv:         kv,
		key:        DefaultKey,
		mergeDepth: 1,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Key returns the storage key in use.
func (g *Gateway) Key() string {
	return g.key
}

// Load reads the stored state merged over the default dataset. It returns
// false when nothing usable is stored; read, parse and schema failures are
// logged and never returned.
func (g *Gateway) Load(ctx context.Context) (*model.RootState, bool) {
	raw, rev, err := g.kv.GetWithRevision(ctx, g.key)
	if err != nil {
		g.logger.Warn("failed to read stored state, using defaults", zap.String("key", g.key), zap.Error(err))
		return nil, false
	}
	g.setRevision(rev)
	if rev == 0 || len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}

	s, err := g.hydrate(raw)
	if err != nil {
		g.logger.Warn("stored state is corrupt, using defaults", zap.String("key", g.key), zap.Error(err))
		return nil, false
	}
	return s, true
}

// Hydrate returns the stored state, or a fresh default dataset when Load
// finds nothing usable.
func (g *Gateway) Hydrate(ctx context.Context) *model.RootState {
	if s, ok := g.Load(ctx); ok {
		return s
	}
	return dataset.Build(g.now())
}

// Save overwrites the stored blob with s. It returns ErrStale, and writes
// nothing, when the blob changed since the gateway last saw it.
func (g *Gateway) Save(ctx context.Context, s *model.RootState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	rev, ok, err := g.kv.CompareAndPut(ctx, g.key, data, g.rev)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	if !ok {
		return ErrStale
	}
	g.rev = rev
	return nil
}

// Changed reports whether the stored blob was written by someone else
// since the gateway last read or wrote it.
func (g *Gateway) Changed(ctx context.Context) (bool, error) {
	rev, err := g.kv.Revision(ctx, g.key)
	if err != nil {
		return false, fmt.Errorf("failed to read state revision: %w", err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return rev != g.rev, nil
}

func (g *Gateway) setRevision(rev int64) {
	g.mu.Lock()
	g.rev = rev
	g.mu.Unlock()
}

func (g *Gateway) hydrate(raw []byte) (*model.RootState, error) {
	overlay, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	defaults, err := json.Marshal(dataset.Build(g.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to encode defaults: %w", err)
	}
	base, err := decodeObject(defaults)
	if err != nil {
		return nil, err
	}

	merged, err := json.Marshal(mergeObjects(base, overlay, g.mergeDepth))
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged state: %w", err)
	}

	var s model.RootState
	if err := json.Unmarshal(merged, &s); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid state: %w", err)
	}
	return &s, nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("stored state is not an object")
	}
	return obj, nil
}

// mergeObjects lays overlay over base. Objects are merged recursively up to
// depth levels; below that, and for every non-object value including
// arrays, the overlay value replaces the base value.
func mergeObjects(base, overlay map[string]any, depth int) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if depth > 1 {
			bm, baseIsObj := out[k].(map[string]any)
			om, overlayIsObj := v.(map[string]any)
			if baseIsObj && overlayIsObj {
				out[k] = mergeObjects(bm, om, depth-1)
				continue
			}
		}
		out[k] = v
	}
	return out
}
