package nb2medium

import (
	"errors"

	"github.com/alnah/go-nb2medium/internal/gist"
	"github.com/alnah/go-nb2medium/internal/medium"
	"github.com/alnah/go-nb2medium/internal/notebook"
	"github.com/alnah/go-nb2medium/internal/pipeline"
	"github.com/alnah/go-nb2medium/internal/render"
)

// Sentinel errors for library operations. Most are the internal packages'
// own sentinels, so errors.Is matches whichever layer produced them.
var (
	ErrEmptyNotebook = notebook.ErrEmptyDocument
	ErrNotebookParse = notebook.ErrParse
	ErrNotebookRead  = notebook.ErrRead
	ErrSaveMarkdown  = errors.New("failed to save markdown")

	// Table conversion errors.
	ErrInvalidTableConversion = render.ErrInvalidConversion
	ErrBrowserNotFound        = render.ErrBrowserNotFound
	ErrBrowserConnect         = render.ErrBrowserConnect
	ErrTableRender            = pipeline.ErrTableRender

	// Markdown preprocessing errors.
	ErrImageRead        = pipeline.ErrImageRead
	ErrAttachmentDecode = pipeline.ErrAttachmentDecode
	ErrLatexRender      = pipeline.ErrLatexRender

	// Gist errors.
	ErrGistify              = pipeline.ErrGistify
	ErrInvalidGistThreshold = pipeline.ErrInvalidGistThreshold
	ErrInvalidGistOutput    = pipeline.ErrInvalidGistOutput
	ErrGistTokenMissing     = gist.ErrTokenMissing

	// Publishing errors.
	ErrInvalidLicense       = medium.ErrInvalidLicense
	ErrInvalidPublishStatus = medium.ErrInvalidPublishStatus
	ErrInvalidTags          = medium.ErrInvalidTags
	ErrAuthor               = medium.ErrAuthor
	ErrPublicationNotFound  = medium.ErrPublicationNotFound
	ErrImageUpload          = medium.ErrImageUpload
	ErrPost                 = medium.ErrPost
	ErrMediumTokenMissing   = medium.ErrTokenMissing

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
