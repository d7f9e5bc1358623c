// Package classify detects project roots within a source Index by marker
// files, so the planner can refuse to treat identical boilerplate shared
// across distinct project roots as a "move" (C5).
package classify

// Template describes one recognized project kind: the marker files that
// identify a directory as that kind's root, and the boilerplate files
// that should always be copied rather than relocated across projects.
type Template struct {
	MarkerFiles []string
	AlwaysCopy  []string
}

// Catalog is the static, process-wide, read-only mapping of project kind
// to Template. It is the reference set recovered in full from
// original_source/config.py's PROJECT_TEMPLATES, exceeding spec.md's
// "at minimum" list since the distillation's wording invites the complete
// set.
var Catalog = map[string]Template{
	"nodejs": {
		MarkerFiles: []string{"package.json"},
		AlwaysCopy: []string{
			".gitignore", ".npmrc", ".nvmrc", ".node-version",
			"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
		},
	},
	"typescript": {
		MarkerFiles: []string{"tsconfig.json"},
		AlwaysCopy: []string{
			"tsconfig.json", "tsconfig.app.json", "tsconfig.node.json", "tsconfig.build.json",
		},
	},
	"vite": {
		MarkerFiles: []string{"vite.config.ts", "vite.config.js"},
		AlwaysCopy: []string{
			"vite.config.ts", "vite.config.js", "postcss.config.js", "postcss.config.cjs",
			"tailwind.config.js", "tailwind.config.ts", "index.html",
		},
	},
	"react": {
		MarkerFiles: []string{"src/App.tsx", "src/App.jsx", "src/main.tsx", "src/main.jsx"},
		AlwaysCopy: []string{
			"src/App.tsx", "src/App.jsx", "src/main.tsx", "src/main.jsx",
			"src/index.css", "src/App.css", "src/vite-env.d.ts",
		},
	},
	"swc": {
		MarkerFiles: []string{".swcrc"},
		AlwaysCopy:  []string{".swcrc"},
	},
	"eslint": {
		MarkerFiles: []string{
			"eslint.config.js", "eslint.config.mjs", ".eslintrc.js", ".eslintrc.json", ".eslintrc.cjs",
		},
		AlwaysCopy: []string{
			"eslint.config.js", "eslint.config.mjs", ".eslintrc.js", ".eslintrc.json", ".eslintrc.cjs",
			".prettierrc", ".prettierrc.json", ".prettierrc.js", ".editorconfig",
		},
	},
	"jest": {
		MarkerFiles: []string{"jest.config.js", "jest.config.ts", "jest.config.mjs"},
		AlwaysCopy: []string{
			"jest.config.js", "jest.config.ts", "jest.config.mjs", "jest.setup.js", "jest.setup.ts",
		},
	},
	"pwa": {
		MarkerFiles: []string{
			"public/favicon/site.webmanifest", "public/site.webmanifest", "public/manifest.json",
		},
		AlwaysCopy: []string{
			"public/favicon/site.webmanifest", "public/favicon/favicon.ico",
			"public/favicon/favicon-16x16.png", "public/favicon/favicon-32x32.png",
			"public/favicon/apple-touch-icon.png", "public/favicon/android-chrome-192x192.png",
			"public/favicon/android-chrome-512x512.png", "public/site.webmanifest",
			"public/manifest.json", "public/favicon.ico",
		},
	},
	"shadcn": {
		MarkerFiles: []string{"components.json", "src/lib/utils.ts"},
		AlwaysCopy: []string{
			"src/lib/utils.ts", "components.json", "src/components/ui/button.tsx",
			"src/components/ui/input.tsx", "src/components/ui/card.tsx",
		},
	},
	"python": {
		MarkerFiles: []string{"pyproject.toml", "setup.py", "requirements.txt"},
		AlwaysCopy: []string{
			"pyproject.toml", "setup.py", "setup.cfg", "requirements.txt", "requirements-dev.txt",
			".python-version", "pytest.ini", "conftest.py", "tox.ini",
		},
	},
	"git": {
		MarkerFiles: []string{".git"},
		AlwaysCopy: []string{
			".gitignore", ".gitattributes", "LICENSE", "LICENSE.md", "LICENSE.txt",
			"README.md", "CHANGELOG.md",
		},
	},
}
