package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-nb2medium/internal/logger"
	"github.com/alnah/go-nb2medium/internal/notebook"
)

// Sentinel errors shared by the stages.
var (
	ErrNoConverter      = errors.New("no table converter configured")
	ErrTableRender      = errors.New("table rendering failed")
	ErrImageRead        = errors.New("failed to read image")
	ErrAttachmentDecode = errors.New("failed to decode attachment")
	ErrOutputDecode     = errors.New("failed to decode output image")
	ErrLatexRender      = errors.New("latex rendering failed")
)

// TableConverter turns an HTML fragment holding a table into base64-encoded
// PNG bytes. Both table strategies implement it.
type TableConverter interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Resources is the state threaded through one conversion.
type Resources struct {
	// Path is the directory relative image paths resolve against.
	Path string
	// Name is the document title.
	Name      string
	Converter TableConverter
	Images    *notebook.ImageStore
	Logger    logrus.FieldLogger
}

// NewResources creates the bag for one conversion.
func NewResources(path, name string, conv TableConverter, log logrus.FieldLogger) *Resources {
	return &Resources{
		Path:      path,
		Name:      name,
		Converter: conv,
		Images:    notebook.NewImageStore(),
		Logger:    logger.OrDiscard(log),
	}
}

func (r *Resources) log() logrus.FieldLogger {
	return logger.OrDiscard(r.Logger)
}

func (r *Resources) render(ctx context.Context, html string) ([]byte, error) {
	if r.Converter == nil {
		return nil, ErrNoConverter
	}
	out, err := r.Converter.Render(ctx, html)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrTableRender, err)
	}
	return out, nil
}

// Preprocessor is one notebook stage. Stages mutate nb and res in place.
type Preprocessor interface {
	Preprocess(ctx context.Context, nb *notebook.Notebook, res *Resources) error
}

// Run applies stages in order, stopping at the first error.
func Run(ctx context.Context, nb *notebook.Notebook, res *Resources, stages ...Preprocessor) error {
	if res.Images == nil {
		res.Images = notebook.NewImageStore()
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Preprocess(ctx, nb, res); err != nil {
			return err
		}
	}
	return nil
}
