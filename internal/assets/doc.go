// Package assets provides the stylesheets and HTML page templates used to
// render tables for screenshots and to build the HTML preview of an article.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - go:embed styles and templates (defaults)
//	    ├── FilesystemLoader  - user directory on disk
//	    └── AssetResolver     - custom first, embedded fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   ├── table.css      # dataframe table screenshots
//	│   └── preview.css    # HTML preview page
//	└── templates/
//	    ├── table.html     # page wrapping one table
//	    └── preview.html   # preview document
//
// Asset names are validated, and FilesystemLoader resolves symlinks and
// verifies every path stays within basePath.
package assets
