package classify

import (
	"strings"

	"github.com/backupsync/backupsync/internal/index"
)

// Map is the result of classifying a source Index against Catalog: which
// project roots were detected, of which kinds, and which relative paths
// are boilerplate that must never be "moved" across project roots.
type Map struct {
	roots      map[string]map[string]struct{} // project root -> kinds detected there
	alwaysCopy map[string]struct{}             // relative paths that are always-copy boilerplate
}

// Build derives a Map from src alone, per spec.md §4.5 (the classifier
// never consults the destination index).
func Build(src *index.Index) *Map {
	m := &Map{
		roots:      make(map[string]map[string]struct{}),
		alwaysCopy: make(map[string]struct{}),
	}

	for _, rec := range src.All() {
		m.detect(rec.RelativePath)
	}

	m.buildAlwaysCopy()

	return m
}

func (m *Map) detect(relPath string) {
	filename := basename(relPath)

	for kind, tmpl := range Catalog {
		for _, marker := range tmpl.MarkerFiles {
			if strings.Contains(marker, "/") {
				if strings.HasSuffix(relPath, marker) {
					m.register(projectRootForMultiSegmentMarker(relPath, marker), kind)
				}

				continue
			}

			if filename == marker {
				m.register(parentOf(relPath), kind)
			}
		}
	}
}

func (m *Map) register(projectRoot, kind string) {
	if m.roots[projectRoot] == nil {
		m.roots[projectRoot] = make(map[string]struct{})
	}

	m.roots[projectRoot][kind] = struct{}{}
}

func (m *Map) buildAlwaysCopy() {
	for projectRoot, kinds := range m.roots {
		for kind := range kinds {
			for _, filename := range Catalog[kind].AlwaysCopy {
				m.alwaysCopy[joinRoot(projectRoot, filename)] = struct{}{}
			}
		}
	}
}

// ProjectRootOf returns the longest known project root that is an
// ancestor of path, and whether one was found at all (distinguishing "no
// project" from the root-level project whose root is "").
func (m *Map) ProjectRootOf(path string) (string, bool) {
	parts := strings.Split(path, "/")

	for i := len(parts) - 1; i >= 0; i-- {
		candidate := ""
		if i > 0 {
			candidate = strings.Join(parts[:i], "/")
		}

		if _, ok := m.roots[candidate]; ok {
			return candidate, true
		}
	}

	return "", false
}

// IsAlwaysCopy reports whether relPath is a boilerplate path under some
// detected project root.
func (m *Map) IsAlwaysCopy(relPath string) bool {
	_, ok := m.alwaysCopy[relPath]

	return ok
}

// IsCrossProjectBoilerplate implements spec.md §4.6's
// is_cross_project_boilerplate(s, c): true iff s is an always-copy path
// and s and c belong to different (or absent) project roots.
func (m *Map) IsCrossProjectBoilerplate(srcPath, candidatePath string) bool {
	if !m.IsAlwaysCopy(srcPath) {
		return false
	}

	srcRoot, srcOK := m.ProjectRootOf(srcPath)
	candRoot, candOK := m.ProjectRootOf(candidatePath)

	return srcOK != candOK || srcRoot != candRoot
}

func basename(relPath string) string {
	if i := strings.LastIndex(relPath, "/"); i >= 0 {
		return relPath[i+1:]
	}

	return relPath
}

func parentOf(relPath string) string {
	parts := strings.Split(relPath, "/")
	if len(parts) <= 1 {
		return ""
	}

	return strings.Join(parts[:len(parts)-1], "/")
}

func projectRootForMultiSegmentMarker(relPath, marker string) string {
	markerDepth := strings.Count(marker, "/") + 1
	parts := strings.Split(relPath, "/")

	if len(parts) > markerDepth {
		return strings.Join(parts[:len(parts)-markerDepth], "/")
	}

	return ""
}

func joinRoot(projectRoot, filename string) string {
	if projectRoot == "" {
		return filename
	}

	return projectRoot + "/" + filename
}
