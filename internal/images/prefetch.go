// Package images prefetches rendered reference images for the medication
// schedule and caches them for the display layer.
package images

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"

	"github.com/medassist-labs/medassist/internal/domain"
	"github.com/medassist-labs/medassist/internal/vision"
)

// imageStore is the slice of the repository the prefetcher needs.
type imageStore interface {
	SetReferenceImage(ctx context.Context, medicationID, imageURL string) error
}

// Prefetcher renders one reference image per medication at startup. Fetches
// are independent and best-effort: a failed render never aborts the others,
// and medications without a rendered image keep their seed placeholder.
type Prefetcher struct {
	store imageStore
	synth vision.Synthesizer

	mu    sync.RWMutex
	cache map[string]string // medication ID -> data URL
}

// NewPrefetcher creates a prefetcher over the given store and synthesizer.
func NewPrefetcher(store imageStore, synth vision.Synthesizer) *Prefetcher {
	return &Prefetcher{
		store: store,
		synth: synth,
		cache: make(map[string]string),
	}
}

// Run fires one render per medication and joins the results. Partial
// results are acceptable; Run returns once every fetch has settled.
func (p *Prefetcher) Run(ctx context.Context, meds []domain.Medication) {
	var wg sync.WaitGroup
	for _, med := range meds {
		wg.Add(1)
		go func(med domain.Medication) {
			defer wg.Done()
			p.fetch(ctx, med)
		}(med)
	}
	wg.Wait()
}

func (p *Prefetcher) fetch(ctx context.Context, med domain.Medication) {
	img, err := p.synth.GenerateContainerImage(ctx, med.Name, med.ContainerDescription)
	if err != nil {
		slog.Info("Reference image unavailable, keeping placeholder",
			"medication_id", med.ID, "error", err)
		return
	}

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img)

	p.mu.Lock()
	p.cache[med.ID] = dataURL
	p.mu.Unlock()

	if err := p.store.SetReferenceImage(ctx, med.ID, dataURL); err != nil {
		slog.Error("Failed to persist reference image", "medication_id", med.ID, "error", err)
	}
	slog.Info("Reference image rendered", "medication_id", med.ID)
}

// Get returns the cached data URL for a medication.
func (p *Prefetcher) Get(medicationID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	url, ok := p.cache[medicationID]
	return url, ok
}

// Apply returns the medication with its rendered image merged in, falling
// back to the stored/seed image when no render has landed.
func (p *Prefetcher) Apply(med domain.Medication) domain.Medication {
	if url, ok := p.Get(med.ID); ok {
		med.ImageURL = url
	}
	return med
}
