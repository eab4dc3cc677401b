package rules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"maek/internal/buildlog"
	"maek/internal/scheduler"
	"maek/internal/target"
	"maek/internal/task"
)

// CPP installs a task compiling cppFile to an object file, discovering
// header dependencies dynamically by invoking the compiler itself.
//
// objBase defaults to opts.ObjPrefix + strip_extension(cppFile); the
// returned objFile is objBase plus the platform's object suffix.
func CPP(e *scheduler.Engine, cppFile string, objBase string, opts Options) (string, error) {
	spec, err := resolvePlatform(goos(opts))
	if err != nil {
		return "", err
	}

	if objBase == "" {
		objBase = opts.ObjPrefix + target.StripExt(cppFile)
	}
	objFile := objBase + spec.ObjSuffix
	depsFile := objBase + ".d"

	cc := append([]string{spec.CC}, spec.Std...)
	cc = append(cc, spec.Warn...)
	cc = append(cc, opts.CPPFlags...)

	objCommand := append(append([]string{}, cc...), "-c", "-o", objFile, cppFile)
	depsCommand := append(append([]string{}, cc...), "-E", "-M", "-MG", "-MT", "x ", "-MF", depsFile, cppFile)

	explicit := append([]string{cppFile}, opts.Depends...)
	label := fmt.Sprintf("CPP %s", objFile)

	run := func(ctx context.Context) error {
		if err := e.UpdateTargets(ctx, explicit, label); err != nil {
			return err
		}

		e.Hashes.Invalidate(target.Resolve(e.Root, objFile))
		if err := os.MkdirAll(parentDir(e.Root, objFile), 0755); err != nil {
			return buildlog.NewBuildError("creating directory for %s: %v", objFile, err)
		}
		if err := e.Runner.Run(ctx, e.Root, objCommand, label); err != nil {
			return err
		}

		e.Hashes.Invalidate(target.Resolve(e.Root, depsFile))
		if err := os.MkdirAll(parentDir(e.Root, depsFile), 0755); err != nil {
			return buildlog.NewBuildError("creating directory for %s: %v", depsFile, err)
		}
		if err := e.Runner.Run(ctx, e.Root, depsCommand, label+" (deps)"); err != nil {
			return err
		}

		// loadDeps result is only consulted for the *next* run's cache
		// key, but the invariant check must still run now so a
		// generated-header violation is caught as soon as it appears.
		if _, err := loadDepsChecked(e, depsFile, explicit, label); err != nil {
			return err
		}
		return nil
	}

	key := func(ctx context.Context) (task.Signature, error) {
		if err := e.UpdateTargets(ctx, explicit, label); err != nil {
			return nil, err
		}
		extra, err := loadDepsChecked(e, depsFile, explicit, label)
		if err != nil {
			return nil, err
		}

		hashTargets := append(append([]string{objFile, depsFile}, explicit...), extra...)
		var components []any
		components = append(components, objCommand, depsCommand)
		for _, h := range e.HashFiles(hashTargets) {
			components = append(components, h)
		}
		return task.NewSignature(components)
	}

	decl := &task.Declaration{
		Label:   label,
		Targets: []string{objFile},
		Run:     run,
		Key:     key,
	}
	if err := e.Registry.Install(decl); err != nil {
		return "", err
	}
	return objFile, nil
}

func goos(opts Options) string {
	if opts.Platform != "" {
		return opts.Platform
	}
	return runtime.GOOS
}

func parentDir(root, t string) string {
	return filepath.Dir(target.Resolve(root, t))
}

// loadDepsChecked runs loadDeps and enforces the generated-header invariant:
// none of the extra depends may themselves be a registered target.
func loadDepsChecked(e *scheduler.Engine, depsFile string, explicit []string, label string) ([]string, error) {
	extra, err := loadDeps(target.Resolve(e.Root, depsFile), explicit)
	if err != nil {
		return nil, err
	}
	var offending []string
	for _, dep := range extra {
		if _, ok := e.Registry.Lookup(dep); ok {
			offending = append(offending, dep)
		}
	}
	if len(offending) > 0 {
		return nil, buildlog.NewBuildError(
			"%s: discovered dependency(ies) %s are themselves registered targets; a header cannot be both a dependency and a generated target",
			label, strings.Join(offending, ", "))
	}
	return extra, nil
}

// loadDeps parses a GNU-make dependency fragment produced with
// -E -M -MG -MT "x " -MF <path>, returning the sorted set of tokens not
// already present in explicit. Returns an empty list if depsFile does not
// exist (first-time build).
func loadDeps(depsFile string, explicit []string) ([]string, error) {
	data, err := os.ReadFile(depsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, buildlog.NewBuildError("reading dependency file %s: %v", depsFile, err)
	}

	text := string(data)
	// Join continuation lines: a backslash-then-newline, or a bare
	// newline, becomes a single space.
	text = strings.ReplaceAll(text, "\\\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(text)

	// Replace any run of whitespace not preceded by a backslash with a
	// single newline, then split on those newlines.
	text = splitUnescapedWhitespace(text)
	tokens := strings.Split(text, "\n")

	if len(tokens) < 2 || tokens[0] != "x" || tokens[1] != ":" {
		return nil, buildlog.NewBuildError("dependency file %s missing sentinel %q", depsFile, "x :")
	}
	tokens = tokens[2:]

	sort.Strings(tokens)

	explicitSet := make(map[string]bool, len(explicit))
	for _, e := range explicit {
		explicitSet[e] = true
	}

	var extra []string
	for _, t := range tokens {
		if t == "" || explicitSet[t] {
			continue
		}
		extra = append(extra, t)
	}
	return extra, nil
}

// splitUnescapedWhitespace turns every run of whitespace not preceded by a
// backslash into a single newline.
func splitUnescapedWhitespace(s string) string {
	var b strings.Builder
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		r := runes[i]
		if r == ' ' || r == '\t' {
			escaped := i > 0 && runes[i-1] == '\\'
			j := i
			for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t') {
				j++
			}
			if escaped {
				b.WriteString(string(runes[i:j]))
			} else {
				b.WriteByte('\n')
			}
			i = j
			continue
		}
		b.WriteRune(r)
		i++
	}
	return b.String()
}
