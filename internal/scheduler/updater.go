package scheduler

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"maek/internal/buildlog"
	"maek/internal/target"
	"maek/internal/task"
)

// UpdateTargets recursively resolves targets, starting (or awaiting) the
// owning task of each, then fails with "for lack of T" for every requested
// target whose owning task ended up Failed. Each requested target is
// resolved in its own goroutine (fanned out via an errgroup) so independent
// targets in the same call race freely; a failing target never prevents its
// siblings from settling.
func (e *Engine) UpdateTargets(ctx context.Context, targets []string, src string) error {
	slotErrs := make([]error, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			slotErrs[i] = e.resolveOne(gctx, t, src)
			return nil // never fail-fast: every slot must settle independently
		})
	}
	_ = g.Wait()

	var msgs []string
	for _, err := range slotErrs {
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	if len(msgs) > 0 {
		return buildlog.NewBuildError("%s", strings.Join(msgs, "; "))
	}
	return nil
}

// resolveOne resolves a single requested target: an undefined abstract
// target or a missing file with no producing task fails immediately,
// otherwise it blocks until the owning task settles.
func (e *Engine) resolveOne(ctx context.Context, t, src string) error {
	t = target.Normalize(t)

	decl, ok := e.Registry.Lookup(t)
	if !ok {
		if target.IsAbstract(t) {
			return buildlog.NewBuildError("abstract target %s requested by %s is not defined", t, src)
		}
		if _, err := os.Stat(target.Resolve(e.Root, t)); err != nil {
			return buildlog.NewBuildError("file %s requested by %s does not exist and no task produces it", t, src)
		}
		return nil
	}

	rs := e.Registry.RunState(decl.ID)
	fut := rs.EnsureStarted(func() {
		e.runTask(ctx, decl, rs, src)
	})
	fut.Wait()

	if rs.Get() == task.Failed {
		return buildlog.NewBuildError("for lack of %s", t)
	}
	return nil
}

// runTask checks the cached key before running; if the recomputed key
// matches, the run is skipped entirely. Otherwise it runs, then recomputes
// the key after success so the next run can skip it. On failure the cached
// key is cleared, so the task's entry is dropped from the cache file.
func (e *Engine) runTask(ctx context.Context, decl *task.Declaration, rs *task.RunState, src string) {
	rs.SetSrc(src)

	var finalErr error
	defer func() {
		if finalErr != nil {
			rs.ClearCachedKey()
			if be, ok := buildlog.AsBuildError(finalErr); ok {
				e.Log.Fail(fmt.Sprintf("!!! FAILED [%s] %s", decl.Label, be.Error()))
			} else {
				e.Log.Fail(fmt.Sprintf("!!! FAILED [%s] %s", decl.Label, finalErr.Error()))
			}
		}
		rs.Finish(finalErr)
	}()

	if cached, ok := rs.CachedKey(); ok && decl.Key != nil {
		newKey, err := decl.Key(ctx)
		if err != nil {
			finalErr = err
			return
		}
		if newKey.Equal(cached) {
			return
		}
	}

	if err := decl.Run(ctx); err != nil {
		finalErr = err
		return
	}

	if decl.Key != nil {
		newKey, err := decl.Key(ctx)
		if err != nil {
			finalErr = err
			return
		}
		rs.SetCachedKey(newKey)
	}
}
