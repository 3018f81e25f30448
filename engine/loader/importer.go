package loader

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
)

// ImportResult is the outcome of one asynchronous import. Meshes is only set when Err is nil.
// Callers that asked for the same path concurrently share the vertex and index slices, which must be treated as read-only.
type ImportResult struct {
	Path   string
	Meshes []mesh.MeshData
	Err    error
}

// importer is the implementation of the Importer interface.
type importer struct {
	mu     *sync.Mutex
	wg     sync.WaitGroup
	loader MeshLoader
	pool   worker.DynamicWorkerPool

	workers     int
	queueSize   int
	idleTimeout time.Duration

	inflight map[string][]chan ImportResult
	nextID   int
	closed   bool
}

// Importer runs MeshLoader.LoadAll on a background worker pool so decoding large files does not stall the frame loop.
// Concurrent requests for the same path share one load.
type Importer interface {
	// Submit queues an import of path. The returned channel receives exactly one result and is then closed.
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - <-chan ImportResult: the result channel
	Submit(path string) <-chan ImportResult

	// Import submits path and blocks until the result is ready or ctx is done.
	//
	// Parameters:
	//   - ctx: the context bounding the wait
	//   - path: the asset path
	//
	// Returns:
	//   - []mesh.MeshData: the decoded meshes
	//   - error: the import failure, or ctx.Err()
	Import(ctx context.Context, path string) ([]mesh.MeshData, error)

	// Pending returns the number of distinct paths currently being loaded.
	//
	// Returns:
	//   - int: the in-flight path count
	Pending() int

	// Close waits for in-flight imports to finish and stops the worker pool.
	// Submit after Close reports a contract violation through the result channel.
	Close()
}

var _ Importer = &importer{}

// NewImporter creates an Importer backed by the given MeshLoader.
//
// Parameters:
//   - loader: the loader façade that decodes files
//   - options: a variadic list of ImporterBuilderOption functions
//
// Returns:
//   - Importer: the started importer
func NewImporter(loader MeshLoader, options ...ImporterBuilderOption) Importer {
	im := &importer{
		mu:          &sync.Mutex{},
		loader:      loader,
		workers:     2,
		queueSize:   64,
		idleTimeout: 1 * time.Second,
		inflight:    make(map[string][]chan ImportResult),
	}
	for _, option := range options {
		option(im)
	}
	im.pool = worker.NewDynamicWorkerPool(im.workers, im.queueSize, im.idleTimeout)
	return im
}

func (im *importer) Submit(path string) <-chan ImportResult {
	out := make(chan ImportResult, 1)
	key := filepath.Clean(path)

	im.mu.Lock()
	if im.closed {
		im.mu.Unlock()
		out <- ImportResult{Path: path, Err: common.ContractError("loader.Submit", "importer is closed")}
		close(out)
		return out
	}
	if waiters, ok := im.inflight[key]; ok {
		im.inflight[key] = append(waiters, out)
		im.mu.Unlock()
		return out
	}
	im.inflight[key] = []chan ImportResult{out}
	im.nextID++
	id := im.nextID
	im.wg.Add(1)
	im.mu.Unlock()

	// SubmitTask blocks while the queue is full, so it must run without holding mu
	im.pool.SubmitTask(worker.Task{
		ID:      id,
		Payload: key,
		Do: func() (any, error) {
			defer im.wg.Done()
			meshes, err := im.load(key)
			im.deliver(key, meshes, err)
			return nil, err
		},
	})
	return out
}

func (im *importer) Import(ctx context.Context, path string) ([]mesh.MeshData, error) {
	select {
	case res := <-im.Submit(path):
		return res.Meshes, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (im *importer) Pending() int {
	im.mu.Lock()
	defer im.mu.Unlock()
	return len(im.inflight)
}

func (im *importer) Close() {
	im.mu.Lock()
	if im.closed {
		im.mu.Unlock()
		return
	}
	im.closed = true
	im.mu.Unlock()

	im.wg.Wait()
	im.pool.Stop()
}

// load runs the loader, converting a panic in a format decoder into an import failure.
func (im *importer) load(path string) (meshes []mesh.MeshData, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Importer] decoder panic for %s: %v", path, r)
			meshes, err = nil, common.ImportError("loader.Import", path, fmt.Errorf("decoder panic: %v", r))
		}
	}()
	start := time.Now()
	meshes, err = im.loader.LoadAll(path)
	if err != nil {
		log.Printf("[Importer] %s failed after %s: %v", path, time.Since(start), err)
	} else {
		log.Printf("[Importer] %s ready after %s", path, time.Since(start))
	}
	return meshes, err
}

func (im *importer) deliver(key string, meshes []mesh.MeshData, err error) {
	im.mu.Lock()
	waiters := im.inflight[key]
	delete(im.inflight, key)
	im.mu.Unlock()

	for _, ch := range waiters {
		res := ImportResult{Path: key, Err: err}
		if err == nil {
			res.Meshes = slices.Clone(meshes)
		}
		ch <- res
		close(ch)
	}
}
