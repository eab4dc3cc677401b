package rules

import (
	"context"
	"fmt"

	"maek/internal/scheduler"
	"maek/internal/target"
	"maek/internal/task"
)

// RULE installs a task producing targets from prerequisites by running
// recipe's commands in sequence. If recipe is empty the task only updates
// prerequisites (useful for grouping, e.g. a ":dist" alias).
//
// key is absent (the task is never cached) iff any declared target is
// abstract; otherwise it recursively updates prerequisites, then returns
// [...recipe argv lists, ...hashFiles(targets ∪ prerequisites)].
func RULE(e *scheduler.Engine, targets, prerequisites []string, recipe [][]string) (*task.Declaration, error) {
	label := fmt.Sprintf("RULE %v", targets)

	anyAbstract := false
	for _, t := range targets {
		if target.IsAbstract(t) {
			anyAbstract = true
			break
		}
	}

	run := func(ctx context.Context) error {
		if err := e.UpdateTargets(ctx, prerequisites, label); err != nil {
			return err
		}
		for i, cmd := range recipe {
			step := fmt.Sprintf("%s (%d/%d)", label, i+1, len(recipe))
			if err := e.Runner.Run(ctx, e.Root, cmd, step); err != nil {
				return err
			}
		}
		for _, t := range targets {
			if !target.IsAbstract(t) {
				e.Hashes.Invalidate(target.Resolve(e.Root, t))
			}
		}
		return nil
	}

	decl := &task.Declaration{
		Label:   label,
		Targets: targets,
		Run:     run,
	}

	if !anyAbstract {
		decl.Key = func(ctx context.Context) (task.Signature, error) {
			if err := e.UpdateTargets(ctx, prerequisites, label); err != nil {
				return nil, err
			}
			all := append(append([]string{}, targets...), prerequisites...)
			var components []any
			for _, cmd := range recipe {
				components = append(components, cmd)
			}
			for _, h := range e.HashFiles(all) {
				components = append(components, h)
			}
			return task.NewSignature(components)
		}
	}

	if err := e.Registry.Install(decl); err != nil {
		return nil, err
	}
	return decl, nil
}
