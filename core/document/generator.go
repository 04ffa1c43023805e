package document

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core"
	"github.com/markazhub/markaz/core/student"
)

// ErrNoDocuments is returned when every record in a job failed to render.
var ErrNoDocuments = errors.New("no documents could be generated")

// packagingShare is the slice of the progress range reserved for zipping.
const packagingShare = 10

type (
	// Document is one rendered file destined for the archive.
	Document struct {
		Filename string
		Data     []byte
	}

	// Renderer produces one document for one student.
	Renderer interface {
		Render(std student.Student) (Document, error)
	}

	// ProgressFunc observes job progress, 0 to 100, monotonic.
	ProgressFunc func(percent int)

	// Result is the terminal report of a bulk generation job. Archive is
	// nil unless at least one document rendered and the job ran to the end.
	Result struct {
		Success   bool
		Completed int
		Failed    int
		Reason    string
		Archive   []byte
	}

	// Generator renders one document per student and packages successes
	// into a single in-memory ZIP. Individual failures are counted and
	// skipped; only a fully failed job aborts.
	Generator struct {
		renderer Renderer
		logger   core.Logger
	}
)

func NewGenerator(renderer Renderer, logger core.Logger) *Generator {
	return &Generator{renderer: renderer, logger: logger}
}

// Generate runs the job over students. Cancellation is cooperative: ctx is
// checked before each item and again before packaging, never mid-render.
// Progress climbs through 90 as items complete; the final 10 belongs to
// packaging.
func (g *Generator) Generate(ctx context.Context, students []student.Student, onProgress ProgressFunc) Result {
	if onProgress == nil {
		onProgress = func(int) {}
	}

	total := len(students)
	docs := make([]Document, 0, total)
	res := Result{}

	for i, std := range students {
		select {
		case <-ctx.Done():
			res.Reason = "cancelled"
			return res
		default:
		}

		doc, err := g.renderer.Render(std)
		if err != nil {
			g.logger.Warn(fmt.Sprintf("rendering document for student %s: %v", std.ID, err), err)
			res.Failed++
		} else {
			docs = append(docs, doc)
			res.Completed++
		}
		onProgress((i + 1) * (100 - packagingShare) / total)
	}

	select {
	case <-ctx.Done():
		res.Reason = "cancelled"
		return res
	default:
	}

	if res.Completed == 0 {
		res.Reason = "all documents failed to generate"
		return res
	}

	archive, err := pack(docs)
	if err != nil {
		res.Reason = fmt.Sprintf("packaging archive: %v", err)
		return res
	}

	res.Success = true
	res.Archive = archive
	onProgress(100)
	return res
}

func pack(docs []Document) ([]byte, error) {
	var buff bytes.Buffer
	zw := zip.NewWriter(&buff)
	for _, doc := range docs {
		w, err := zw.Create(doc.Filename)
		if err != nil {
			return nil, err
		}
		if _, err = w.Write(doc.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}
