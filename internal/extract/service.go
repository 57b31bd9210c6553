package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/knowron/foss-api/internal/cache"
	"github.com/knowron/foss-api/internal/observability"
	"github.com/knowron/foss-api/internal/pdf"
	"github.com/knowron/foss-api/internal/storage"
)

// Service orchestrates document extraction: fetch, parse, normalize,
// classify, persist. All dependencies are passed in explicitly; the service
// holds no hidden process-wide state and is safe for concurrent use.
type Service struct {
	gateway  storage.Gateway
	engine   pdf.Engine
	cache    cache.Client // may be nil: caching is optional
	logger   *observability.Logger
	version  string
	workers  int
	cacheTTL time.Duration
}

// ServiceConfig holds extraction settings.
type ServiceConfig struct {
	// Version is the extraction-format version stamped into results.
	Version string
	// Workers bounds the batch worker pool and therefore the number of
	// simultaneous object-store transfers.
	Workers int
	// CacheTTL bounds how long uploaded-result keys are remembered per
	// content hash. Zero means no expiry.
	CacheTTL time.Duration
}

// NewService creates an extraction service. The cache may be nil.
func NewService(gateway storage.Gateway, engine pdf.Engine, resultCache cache.Client,
	logger *observability.Logger, cfg ServiceConfig) *Service {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	version := cfg.Version
	if version == "" {
		version = "1.0"
	}
	return &Service{
		gateway:  gateway,
		engine:   engine,
		cache:    resultCache,
		logger:   logger.With("extract"),
		version:  version,
		workers:  workers,
		cacheTTL: cfg.CacheTTL,
	}
}

// Extract runs the batch-flow pipeline for one path, converting every
// failure, including panics in the parser or assembly, into a
// FailedExtraction. It never returns an error and never aborts a batch.
func (s *Service) Extract(ctx context.Context, rawPath string) (result Result) {
	docPath := unescapePath(rawPath)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("path", docPath).
				Interface("panic", r).
				Msg("extraction panicked")
			result = failed(docPath, http.StatusInternalServerError,
				fmt.Sprintf("unexpected extraction failure: %v", r))
		}
	}()

	start := time.Now()

	data, err := s.gateway.Fetch(ctx, docPath)
	if err != nil {
		return fetchFailure(docPath, err)
	}

	doc, err := s.engine.Open(ctx, data)
	if err != nil {
		return failed(docPath, http.StatusInternalServerError,
			fmt.Sprintf("parsing %q failed: %v", docPath, err))
	}

	hash := hashBytes(data)
	pages := buildPages(doc)
	elapsed := time.Since(start).Seconds()

	extracted, err := NewExtractedDoc(docPath, hash, elapsed, toTOC(doc.TOC), pages, s.version)
	if err != nil {
		return failed(docPath, http.StatusInternalServerError, err.Error())
	}

	s.logger.Debug().
		Str("path", docPath).
		Str("hash", hash).
		Int("pages", len(pages)).
		Float64("elapsed_seconds", extracted.ElapsedSeconds).
		Msg("document extracted")
	return Result{Doc: extracted}
}

// ExtractBatch runs Extract concurrently over paths through a bounded worker
// pool. The result slice has one entry per input path, in input order,
// regardless of completion order. A failing document never affects its
// siblings.
func (s *Service) ExtractBatch(ctx context.Context, paths []string) []Result {
	if len(paths) == 0 {
		return []Result{}
	}

	type workItem struct {
		index int
		path  string
	}

	workCh := make(chan workItem, len(paths))
	results := make([]Result, len(paths))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, p := range paths {
		workCh <- workItem{index: i, path: p}
	}
	close(workCh)

	workers := s.workers
	if workers > len(paths) {
		workers = len(paths)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				res := s.Extract(ctx, item.path)

				mu.Lock()
				results[item.index] = res
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return results
}

// ExtractDocument runs the async single-document flow: extract, classify,
// and, for text-based documents, persist the result and return its storage
// key. The returned Envelope is exactly one of Success or ErrorModel.
func (s *Service) ExtractDocument(ctx context.Context, rawPath string, envelopes *EnvelopeBuilder) (env Envelope) {
	docPath := unescapePath(rawPath)

	defer func() {
		if r := recover(); r != nil {
			env = envelopes.ForPath(docPath, http.StatusInternalServerError,
				fmt.Errorf("unexpected extraction failure: %v", r))
		}
	}()

	start := time.Now()

	data, err := s.gateway.Fetch(ctx, docPath)
	if err != nil {
		f := fetchFailure(docPath, err).Failure
		return envelopes.ForPath(docPath, f.StatusCode, errors.New(f.Detail))
	}

	doc, err := s.engine.Open(ctx, data)
	if err != nil {
		return envelopes.ForPath(docPath, http.StatusInternalServerError,
			fmt.Errorf("parsing %q failed: %w", docPath, err))
	}

	hash := hashBytes(data)
	pages := buildPages(doc)
	counts := countContent(pages, doc)
	docType := Classify(counts.textBlocks, counts.images, counts.drawings)

	var key *string
	if docType == DocTypeTextBased {
		storedKey, err := s.persist(ctx, docPath, hash, toTOC(doc.TOC), pages, start)
		if err != nil {
			return envelopes.ForPath(docPath, http.StatusInternalServerError, err)
		}
		key = &storedKey
	}

	s.logger.Info().
		Str("path", docPath).
		Str("hash", hash).
		Str("doc_type", string(docType)).
		Bool("persisted", key != nil).
		Msg("document processed")

	return Success{
		Success: true,
		DocHash: hash,
		Key:     key,
		DocType: string(docType),
	}
}

// persist uploads the assembled document and returns its storage key. The
// content hash keys a result cache: re-extracting identical bytes reuses the
// previously uploaded key instead of writing a second object. Cache failures
// are logged and ignored; caching never fails an extraction.
func (s *Service) persist(ctx context.Context, docPath, hash string, toc []TOCEntry, pages []Page, start time.Time) (string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, hash); err == nil {
			s.logger.Debug().
				Str("path", docPath).
				Str("hash", hash).
				Msg("result cache hit, skipping upload")
			return string(cached), nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("hash", hash).Msg("result cache lookup failed")
		}
	}

	extracted, err := NewExtractedDoc(docPath, hash, time.Since(start).Seconds(), toc, pages, s.version)
	if err != nil {
		return "", err
	}

	// The serialized form is transient: it exists only for the upload and is
	// discarded regardless of outcome.
	payload, err := json.Marshal(extracted)
	if err != nil {
		return "", fmt.Errorf("serializing extraction result for %q: %w", docPath, err)
	}

	key, err := s.gateway.Upload(ctx, resultKey(docPath, time.Now()), payload)
	if err != nil {
		return "", fmt.Errorf("uploading extraction result for %q: %w", docPath, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, hash, []byte(key), s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("hash", hash).Msg("result cache store failed")
		}
	}
	return key, nil
}

// resultKey derives a collision-free upload key from the source path and a
// microsecond-precision UTC timestamp.
func resultKey(docPath string, now time.Time) string {
	base := strings.TrimSuffix(docPath, path.Ext(docPath))
	return fmt.Sprintf("%s-%s.json", base, now.UTC().Format("20060102T150405.000000"))
}

// unescapePath decodes any percent-encoding in the request path. A literal
// "+" is part of the path, not an encoded space. Paths that are not valid
// percent-encodings are used as-is.
func unescapePath(rawPath string) string {
	unescaped, err := url.PathUnescape(rawPath)
	if err != nil {
		return rawPath
	}
	return unescaped
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// fetchFailure maps gateway errors onto the failure taxonomy: not-found
// becomes a 404 naming the path, anything else a 500 carrying the underlying
// error's type and message.
func fetchFailure(docPath string, err error) Result {
	if errors.Is(err, storage.ErrNotFound) {
		return failed(docPath, http.StatusNotFound,
			fmt.Sprintf("document %q not found in the document store", docPath))
	}
	return failed(docPath, http.StatusInternalServerError,
		fmt.Sprintf("fetching %q failed: %T: %v", docPath, err, err))
}

func failed(docPath string, statusCode int, detail string) Result {
	return Result{Failure: &FailedExtraction{
		Path:       docPath,
		StatusCode: statusCode,
		Detail:     detail,
	}}
}
