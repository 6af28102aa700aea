package main

import (
	"bytes"
	"context"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeFunc is the decode capability the loader is constructed with. The
// engine is agnostic to which codec backs it; production uses the stdlib
// registry, tests inject fakes.
type DecodeFunc func(data []byte) (image.Image, error)

// StdDecode decodes with whatever codecs are registered via blank imports.
func StdDecode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

type loadRequest struct {
	ref     ImageRef
	token   uint64
	preload bool
}

// LoadResult is one completed decode, tagged with the generation token it
// was issued under.
type LoadResult struct {
	Ref     ImageRef
	Token   uint64
	Img     image.Image
	Anim    *gif.GIF // set for multi-frame GIFs
	Err     error
	Preload bool
}

// AsyncLoader runs decodes on a bounded worker pool. Cancellation is
// cooperative: each request carries a per-path generation token, and Poll
// discards any completion whose token is no longer the latest issued for its
// path. Superseded work is never applied, only wasted.
//
// Request and Poll must be called from the update loop only; the token and
// pending tables are unsynchronized by design.
type AsyncLoader struct {
	decode   DecodeFunc
	requests chan loadRequest
	results  chan LoadResult
	tokens   map[string]uint64
	pending  map[string]bool
	ctx      context.Context
	cancel   context.CancelFunc
}

const (
	defaultLoadWorkers = 2
	loadQueueSize      = 64
)

// NewAsyncLoader starts workers goroutines decoding with the given capability.
func NewAsyncLoader(decode DecodeFunc, workers int) *AsyncLoader {
	if workers < 1 {
		workers = defaultLoadWorkers
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &AsyncLoader{
		decode:   decode,
		requests: make(chan loadRequest, loadQueueSize),
		results:  make(chan LoadResult, loadQueueSize),
		tokens:   make(map[string]uint64),
		pending:  make(map[string]bool),
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < workers; i++ {
		go l.worker()
	}
	return l
}

// Request issues a decode for ref and returns its generation token. Any
// earlier request for the same path is invalidated by the new token; its
// result, if it ever arrives, is dropped at Poll.
func (l *AsyncLoader) Request(ref ImageRef, preload bool) uint64 {
	token := l.tokens[ref.Path] + 1
	l.tokens[ref.Path] = token
	l.pending[ref.Path] = true

	select {
	case l.requests <- loadRequest{ref: ref, token: token, preload: preload}:
	default:
		// Queue full: drop so a later cycle can retry the same path.
		debugLog("Load queue full, dropping request for %s", ref.Path)
		delete(l.pending, ref.Path)
	}
	return token
}

// IsPending reports whether the latest request for path is still in flight.
func (l *AsyncLoader) IsPending(path string) bool {
	return l.pending[path]
}

// Poll drains completed decodes without blocking. Completions carrying a
// stale token are discarded here, the single consumption point; everything
// returned is current and safe to apply.
func (l *AsyncLoader) Poll() []LoadResult {
	var applied []LoadResult
	for {
		select {
		case res := <-l.results:
			latest := l.tokens[res.Ref.Path]
			if res.Token != latest {
				debugLog("Discarding stale result for %s (token %d, latest %d)",
					res.Ref.Path, res.Token, latest)
				continue
			}
			delete(l.pending, res.Ref.Path)
			applied = append(applied, res)
		default:
			return applied
		}
	}
}

// Stop cancels the workers. In-flight decodes finish and are dropped.
func (l *AsyncLoader) Stop() {
	l.cancel()
}

func (l *AsyncLoader) worker() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case req := <-l.requests:
			res := l.load(req)
			select {
			case l.results <- res:
			case <-l.ctx.Done():
				return
			}
		}
	}
}

// load is a pure path-to-pixels function: it shares no mutable state with
// the update loop and reports failures through the result, never a panic.
func (l *AsyncLoader) load(req loadRequest) LoadResult {
	res := LoadResult{Ref: req.ref, Token: req.token, Preload: req.preload}

	data, err := readImageBytes(req.ref)
	if err != nil {
		res.Err = classifyLoadError(req.ref.Path, err)
		return res
	}

	if req.ref.Format == "gif" {
		if anim, err := gif.DecodeAll(bytes.NewReader(data)); err == nil && len(anim.Image) > 1 {
			res.Anim = anim
			res.Img = anim.Image[0]
			return res
		}
	}

	img, err := l.decode(data)
	if err != nil {
		res.Err = classifyLoadError(req.ref.Path, &DecodeError{Path: req.ref.Path, Err: err})
		return res
	}
	res.Img = img
	return res
}
