package policy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"governance-backend/internal/extract"
	"governance-backend/internal/governance"
	"governance-backend/internal/shared/storage/object"
	"governance-backend/internal/shared/telemetry"
)

// Static always returns the same policy text.
type Static struct {
	Text string
}

// PolicyContext returns the configured text, or the baseline policy when empty.
func (s Static) PolicyContext(_ context.Context) (string, error) {
	if strings.TrimSpace(s.Text) == "" {
		return governance.BaselinePolicy, nil
	}
	return s.Text, nil
}

// Stats summarizes the cached policy context.
type Stats struct {
	Documents int  `json:"documents"`
	Chars     int  `json:"chars"`
	Baseline  bool `json:"baseline"`
	Cached    bool `json:"cached"`
}

// StoreProvider concatenates the text of every policy document under a prefix in
// the object store. The result is cached until Invalidate is called.
type StoreProvider struct {
	store  object.ObjectStore
	prefix string

	mu     sync.RWMutex
	cached string
	stats  Stats
	valid  bool
}

// NewStoreProvider returns a provider reading documents under prefix.
func NewStoreProvider(store object.ObjectStore, prefix string) *StoreProvider {
	return &StoreProvider{store: store, prefix: strings.Trim(prefix, "/")}
}

// Prefix returns the key prefix documents are stored under.
func (p *StoreProvider) Prefix() string {
	return p.prefix
}

// PolicyContext returns the cached context, loading it on first use.
func (p *StoreProvider) PolicyContext(ctx context.Context) (string, error) {
	p.mu.RLock()
	if p.valid {
		text := p.cached
		p.mu.RUnlock()
		return text, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.valid {
		return p.cached, nil
	}
	text, stats, err := p.load(ctx)
	if err != nil {
		return "", err
	}
	p.cached = text
	p.stats = stats
	p.valid = true
	return text, nil
}

// Invalidate drops the cached context.
func (p *StoreProvider) Invalidate() {
	p.mu.Lock()
	p.valid = false
	p.cached = ""
	p.stats = Stats{}
	p.mu.Unlock()
}

// Stats reports what the cached context was built from.
func (p *StoreProvider) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.stats
	s.Cached = p.valid
	return s
}

// ErrUnsupported is returned for uploads whose type cannot be extracted.
var ErrUnsupported = errors.New("unsupported policy document type")

// Upload stores a policy document under the prefix and drops the cache.
func (p *StoreProvider) Upload(ctx context.Context, fileName string, r io.Reader) (object.Info, error) {
	if !extract.Supported(fileName) {
		return object.Info{}, fmt.Errorf("%w: %s", ErrUnsupported, path.Ext(fileName))
	}
	key, size, _, err := p.store.Save(ctx, p.prefix, fileName, r)
	if err != nil {
		return object.Info{}, fmt.Errorf("save policy document: %w", err)
	}
	p.Invalidate()
	return object.Info{Key: key, SizeBytes: size}, nil
}

// Documents lists stored policy documents.
func (p *StoreProvider) Documents(ctx context.Context) ([]object.Info, error) {
	return p.store.List(ctx, p.prefix)
}

func (p *StoreProvider) load(ctx context.Context) (string, Stats, error) {
	items, err := p.store.List(ctx, p.prefix)
	if err != nil {
		return "", Stats{}, fmt.Errorf("list policy documents: %w", err)
	}

	sections := make([]string, 0, len(items))
	for _, item := range items {
		if !extract.Supported(item.Key) {
			continue
		}
		text, err := extract.ExtractText(ctx, p.store, item.Key, extract.MimeFromName(item.Key))
		if err != nil {
			telemetry.Warn("policy.document_skipped", map[string]any{"key": item.Key, "error": err.Error()})
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("### %s\n%s", displayName(item.Key), text))
	}

	if len(sections) == 0 {
		return governance.BaselinePolicy, Stats{Chars: len(governance.BaselinePolicy), Baseline: true}, nil
	}
	text := strings.Join(sections, "\n\n")
	telemetry.Info("policy.loaded", map[string]any{"documents": len(sections), "chars": len(text)})
	return text, Stats{Documents: len(sections), Chars: len(text)}, nil
}

// displayName strips the random upload prefix from a stored key.
func displayName(key string) string {
	base := path.Base(key)
	if i := strings.Index(base, "_"); i == 32 {
		return base[i+1:]
	}
	return base
}

var (
	_ governance.PolicyProvider = Static{}
	_ governance.PolicyProvider = (*StoreProvider)(nil)
)
