package compileinfo

import (
	"fmt"
	"os"
	"runtime/debug"
)

type CompileInfo struct {
	Package    string
	Version    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool

	// Deps maps module paths to the versions linked into the binary.
	Deps map[string]string
}

func (c CompileInfo) String() string {
	mod := ""
	if c.Modified {
		mod = " Files in the repo were modified after that commit."
	}

	return fmt.Sprintf("This %s binary was built with %s at commit %v at time %v.%s", c.Package, c.GoVersion, c.Commit, c.CommitTime, mod)
}

// Revision identifies the build: the VCS commit when known, else the module
// version, else "devel".
func (c CompileInfo) Revision() string {
	switch {
	case c.Commit != "" && c.Modified:
		return c.Commit + "-dirty"
	case c.Commit != "":
		return c.Commit
	case c.Version != "" && c.Version != "(devel)":
		return c.Version
	}
	return "devel"
}

// Dependency returns the version of a linked module, or "unknown" (e.g. in
// test binaries, which carry no dependency info).
func (c CompileInfo) Dependency(path string) string {
	if v, ok := c.Deps[path]; ok && v != "" {
		return v
	}
	return "unknown"
}

func Get() CompileInfo {
	out := CompileInfo{Deps: map[string]string{}}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = z.GoVersion
	out.Package = z.Path
	out.Version = z.Main.Version
	for _, d := range z.Deps {
		if d.Replace != nil {
			out.Deps[d.Path] = d.Replace.Version
			continue
		}
		out.Deps[d.Path] = d.Version
	}
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

func PrintToStdErr() {
	z := Get()
	fmt.Fprintf(os.Stderr, "%s\n", z)
}
