// Package scheduler implements the Scheduler/Updater and ties together the
// Task Registry, Hash Cache, Job Pool, Command Runner and Persistent Cache
// Store into the Engine that driver code configures and updates.
package scheduler

import (
	"context"

	"maek/internal/buildlog"
	"maek/internal/cachestore"
	"maek/internal/hashcache"
	"maek/internal/jobpool"
	"maek/internal/runner"
	"maek/internal/task"
)

// Engine is the build engine: an explicit root (rather than a process-wide
// chdir) plus the Task Registry, Hash Cache, Job Pool, Command Runner and
// Persistent Cache Store.
type Engine struct {
	// Root is the directory every target path is resolved against.
	Root string

	Registry *task.Registry
	Hashes   *hashcache.Cache
	Pool     *jobpool.Pool
	Runner   *runner.Runner
	Store    *cachestore.Store
	Log      *buildlog.Logger
}

// New builds an Engine rooted at root, persisting its cache at cachePath.
func New(root, cachePath string, log *buildlog.Logger) *Engine {
	if log == nil {
		log = buildlog.New()
	}
	pool := jobpool.New(jobpool.DefaultSize())
	return &Engine{
		Root:     root,
		Registry: task.NewRegistry(),
		Hashes:   hashcache.New(),
		Pool:     pool,
		Runner:   runner.New(pool, log),
		Store:    cachestore.New(cachePath),
		Log:      log,
	}
}

// HashFiles resolves targets against e.Root and digests them, skipping
// abstract targets. Exposed for the Rule Builders.
func (e *Engine) HashFiles(targets []string) []string {
	return e.Hashes.HashFiles(e.Root, targets)
}

// Update runs one full build:
//  1. zero every task's cachedKey, rearm its run-state, and start a fresh
//     Hash Cache so files changed since a previous Update are re-hashed,
//  2. load the persisted cache file,
//  3. invoke UpdateTargets,
//  4. write surviving keys back,
//  5. log statistics.
//
// Cache-file read errors are logged but never fail the run; cache-file
// write errors are fatal and are returned to the caller.
func (e *Engine) Update(ctx context.Context, targets []string) error {
	for _, d := range e.Registry.All() {
		rs := e.Registry.RunState(d.ID)
		rs.ClearCachedKey()
		rs.Reset()
	}
	e.Hashes = hashcache.New()

	hits, removed, _ := e.Store.Load(e.Registry, e.Log)

	runErr := e.UpdateTargets(ctx, targets, "user")

	if err := e.Store.Save(e.Registry); err != nil {
		return err
	}

	e.Log.Stats(hits, len(e.Registry.All()), removed)

	if runErr != nil {
		e.Log.Summary("FAILED: " + runErr.Error())
		return runErr
	}
	e.Log.Summary("Targets are now up to date")
	return nil
}
