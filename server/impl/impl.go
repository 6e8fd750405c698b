package impl

import (
	"time"

	"github.com/coinmeme-project/coinmeme/pkg/memedb"
	"github.com/coinmeme-project/coinmeme/server/impl/caption"
	"github.com/coinmeme-project/coinmeme/server/impl/render"
	"github.com/coinmeme-project/coinmeme/server/impl/storage"
)

type server struct {
	captioner *caption.Generator
	renderer  *render.Renderer

	// Template records and trend briefs, loaded once per process run.
	templates []memedb.Template
	briefs    []memedb.Brief

	// Directory holding one <template name>.jpg per template.
	imageDir string

	// Storage is a collection of Google Cloud Storage related configuration.
	storage Storage

	now func() time.Time
}

type Storage struct {
	// A client for Google Cloud Storage. May be nil when archiving is off.
	Client storage.Client

	// The bucket rendered memes are archived to. Empty disables archiving.
	OutputBucket string
}

func New(
	captioner *caption.Generator,
	renderer *render.Renderer,
	templates []memedb.Template,
	briefs []memedb.Brief,
	imageDir string,
	storage Storage,
) *server {
	return &server{
		captioner: captioner,
		renderer:  renderer,
		templates: templates,
		briefs:    briefs,
		imageDir:  imageDir,
		storage:   storage,
		now:       time.Now,
	}
}
