package rules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"maek/internal/buildlog"
	"maek/internal/scheduler"
	"maek/internal/target"
	"maek/internal/task"
)

// LINK installs a task linking objFiles into exeBase plus the platform's
// executable suffix.
func LINK(e *scheduler.Engine, objFiles []string, exeBase string, opts Options) (string, error) {
	spec, err := resolvePlatform(goos(opts))
	if err != nil {
		return "", err
	}

	exeFile := exeBase + spec.ExeSuffix
	linkCommand := append([]string{spec.CC}, "-o", exeFile)
	linkCommand = append(linkCommand, objFiles...)
	linkCommand = append(linkCommand, opts.LINKLibs...)

	depends := append(append([]string{}, objFiles...), opts.Depends...)
	label := fmt.Sprintf("LINK %s", exeFile)

	run := func(ctx context.Context) error {
		if err := e.UpdateTargets(ctx, depends, label); err != nil {
			return err
		}
		e.Hashes.Invalidate(target.Resolve(e.Root, exeFile))
		if err := os.MkdirAll(filepath.Dir(target.Resolve(e.Root, exeFile)), 0755); err != nil {
			return buildlog.NewBuildError("creating directory for %s: %v", exeFile, err)
		}
		return e.Runner.Run(ctx, e.Root, linkCommand, label)
	}

	key := func(ctx context.Context) (task.Signature, error) {
		if err := e.UpdateTargets(ctx, depends, label); err != nil {
			return nil, err
		}
		hashTargets := append([]string{exeFile}, depends...)
		components := []any{linkCommand}
		for _, h := range e.HashFiles(hashTargets) {
			components = append(components, h)
		}
		return task.NewSignature(components)
	}

	decl := &task.Declaration{
		Label:   label,
		Targets: []string{exeFile},
		Run:     run,
		Key:     key,
	}
	if err := e.Registry.Install(decl); err != nil {
		return "", err
	}
	return exeFile, nil
}
