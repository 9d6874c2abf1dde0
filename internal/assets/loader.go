package assets

// AssetLoader loads CSS styles and HTML templates by bare name.
type AssetLoader interface {
	// LoadStyle returns styles/{name}.css.
	LoadStyle(name string) (string, error)
	// LoadTemplate returns templates/{name}.html.
	LoadTemplate(name string) (string, error)
}

// Built-in asset names.
const (
	TableStyle      = "table"
	PreviewStyle    = "preview"
	TableTemplate   = "table"
	PreviewTemplate = "preview"
)
