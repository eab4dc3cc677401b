// Package rules implements the Rule Builders: RULE, CPP, and LINK, the
// factories that install tasks into the Task Registry with a run action and
// an optional key function.
package rules

import "maek/internal/buildlog"

// Options is the configuration surface for CPP and LINK.
type Options struct {
	ObjPrefix string
	ObjSuffix string
	ExeSuffix string
	Depends   []string
	CPPFlags  []string
	LINKLibs  []string

	// Platform overrides runtime.GOOS; tests pin it so fixtures stay
	// host-independent. Empty means "use runtime.GOOS".
	Platform string
}

// DefaultOptions returns the documented defaults. ObjSuffix/ExeSuffix are
// left empty and are not read: CPP and LINK take the object and executable
// suffixes from the platform table that resolvePlatform looks up.
func DefaultOptions() Options {
	return Options{
		ObjPrefix: "objs/",
		Depends:   nil,
		CPPFlags:  nil,
		LINKLibs:  nil,
	}
}

type platformSpec struct {
	CC        string
	Std       []string
	Warn      []string
	ObjSuffix string
	ExeSuffix string
}

var platforms = map[string]platformSpec{
	"linux": {
		CC:        "g++",
		Std:       []string{"-std=c++2a"},
		Warn:      []string{"-Wall", "-Werror", "-g"},
		ObjSuffix: ".o",
		ExeSuffix: "",
	},
	"darwin": {
		CC:        "clang++",
		Std:       []string{"-std=c++2a"},
		Warn:      []string{"-Wall", "-Werror", "-g"},
		ObjSuffix: ".o",
		ExeSuffix: "",
	},
}

// resolvePlatform looks up the platform spec for opts.Platform (or
// runtime.GOOS if empty). windows (and anything else unlisted) fails loudly
// at configuration time with a ConfigError.
func resolvePlatform(goos string) (platformSpec, error) {
	spec, ok := platforms[goos]
	if !ok {
		return platformSpec{}, buildlog.NewConfigError("unsupported platform %q", goos)
	}
	return spec, nil
}
