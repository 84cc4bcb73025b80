// Package batch converts many documents concurrently.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/NissesSenap/chartembed/internal/logging"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// FileConverter converts one document file into another.
type FileConverter interface {
	ConvertFile(input, output string) error
}

// Job is one document to convert.
type Job struct {
	Input  string
	Output string
}

// JobsFor maps every input to an .html file of the same base name in
// outDir. Two inputs that would write the same output are an error.
func JobsFor(inputs []string, outDir string) ([]Job, error) {
	jobs := make([]Job, 0, len(inputs))
	owner := make(map[string]string, len(inputs))
	for _, in := range inputs {
		base := filepath.Base(in)
		name := strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
		out := filepath.Join(outDir, name)
		if prev, ok := owner[out]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, in, out)
		}
		owner[out] = in
		jobs = append(jobs, Job{Input: in, Output: out})
	}
	return jobs, nil
}

// DocumentPool manages concurrent conversion of documents with rate
// limiting and per-document error handling
type DocumentPool struct {
	jobs        []Job
	semaphore   chan struct{}
	rateLimiter *rate.Limiter
	errors      map[string]error
	mu          sync.Mutex
	logger      *log.Logger
}

// NewDocumentPool creates a new DocumentPool
//
// Parameters:
//   - jobs: documents to convert
//   - dps: documents started per second, 0 or less for no limit
//   - maxConcurrent: maximum number of documents converted at once
//
// The rate limiter uses a burst size of dps*2 to allow for small bursts
// while maintaining the average rate over time.
func NewDocumentPool(jobs []Job, dps float64, maxConcurrent int, logger *log.Logger) *DocumentPool {
	if logger == nil {
		logger = logging.Discard()
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	limit, burst := rate.Inf, 1
	if dps > 0 {
		limit = rate.Limit(dps)
		burst = max(int(dps*2), 1)
	}
	return &DocumentPool{
		jobs:        jobs,
		semaphore:   make(chan struct{}, maxConcurrent),
		rateLimiter: rate.NewLimiter(limit, burst),
		errors:      make(map[string]error),
		logger:      logger,
	}
}

// ConvertAll converts all documents concurrently.
//
// Every document is attempted; a failed document does not stop the others.
// The returned error only reports how many failed, use Errors for details.
func (p *DocumentPool) ConvertAll(ctx context.Context, conv FileConverter) error {
	var wg sync.WaitGroup

	for _, job := range p.jobs {
		wg.Add(1)

		go func(j Job) {
			defer wg.Done()

			p.semaphore <- struct{}{}
			defer func() { <-p.semaphore }()

			if err := p.rateLimiter.Wait(ctx); err != nil {
				p.fail(j, fmt.Errorf("rate limiter error: %w", err))
				return
			}

			if err := conv.ConvertFile(j.Input, j.Output); err != nil {
				p.fail(j, err)
				return
			}
			p.logger.Info("converted", "input", j.Input, "output", j.Output)
		}(job)
	}

	wg.Wait()

	if n := len(p.Errors()); n > 0 {
		return fmt.Errorf("failed to convert %d documents", n)
	}
	return nil
}

func (p *DocumentPool) fail(j Job, err error) {
	p.mu.Lock()
	p.errors[j.Input] = err
	p.mu.Unlock()
	p.logger.Error("conversion failed", "input", j.Input, "err", err)
}

// Errors returns a copy of the errors map, keyed by input path.
func (p *DocumentPool) Errors() map[string]error {
	p.mu.Lock()
	defer p.mu.Unlock()

	errorsCopy := make(map[string]error, len(p.errors))
	for k, v := range p.errors {
		errorsCopy[k] = v
	}
	return errorsCopy
}
