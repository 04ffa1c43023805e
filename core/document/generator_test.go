package document

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markazhub/markaz/core"
	"github.com/markazhub/markaz/core/student"
)

// stubRenderer renders a trivial document per student and fails the IDs
// listed in failIDs. onRender (optional) runs before each render.
type stubRenderer struct {
	failIDs  map[string]bool
	onRender func(std student.Student)
}

var _ Renderer = (*stubRenderer)(nil)

func (r *stubRenderer) Render(std student.Student) (Document, error) {
	if r.onRender != nil {
		r.onRender(std)
	}
	if r.failIDs[std.ID] {
		return Document{}, errors.New("render blew up")
	}
	return Document{
		Filename: std.ID + ".pdf",
		Data:     []byte("pdf for " + std.Name),
	}, nil
}

type nopLogger struct{}

var _ core.Logger = (*nopLogger)(nil)

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func makeStudents(n int) []student.Student {
	students := make([]student.Student, 0, n)
	for i := 1; i <= n; i++ {
		students = append(students, student.Student{
			ID:   fmt.Sprintf("std-%d", i),
			Name: fmt.Sprintf("Student %d", i),
		})
	}
	return students
}

func archiveNames(t *testing.T, archive []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestGenerateAllSucceed(t *testing.T) {
	gen := NewGenerator(&stubRenderer{}, nopLogger{})

	var progress []int
	res := gen.Generate(context.Background(), makeStudents(3), func(p int) {
		progress = append(progress, p)
	})

	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Completed)
	assert.Equal(t, 0, res.Failed)
	assert.Empty(t, res.Reason)
	assert.ElementsMatch(t, []string{"std-1.pdf", "std-2.pdf", "std-3.pdf"}, archiveNames(t, res.Archive))

	// progress is monotonic, saves the last slice for packaging, and
	// finishes at exactly 100
	require.NotEmpty(t, progress)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
	assert.Equal(t, 90, progress[len(progress)-2])
	assert.Equal(t, 100, progress[len(progress)-1])

	// the archive holds the rendered bytes, not placeholders
	zr, err := zip.NewReader(bytes.NewReader(res.Archive), int64(len(res.Archive)))
	require.NoError(t, err)
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "pdf for Student 1", string(data))
}

func TestGeneratePartialFailure(t *testing.T) {
	renderer := &stubRenderer{failIDs: map[string]bool{"std-3": true}}
	gen := NewGenerator(renderer, nopLogger{})

	var last int
	res := gen.Generate(context.Background(), makeStudents(5), func(p int) { last = p })

	// one bad record is skipped, not fatal
	assert.True(t, res.Success)
	assert.Equal(t, 4, res.Completed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 100, last)
	assert.ElementsMatch(t,
		[]string{"std-1.pdf", "std-2.pdf", "std-4.pdf", "std-5.pdf"},
		archiveNames(t, res.Archive))
}

func TestGenerateAllFail(t *testing.T) {
	renderer := &stubRenderer{failIDs: map[string]bool{"std-1": true, "std-2": true}}
	gen := NewGenerator(renderer, nopLogger{})

	res := gen.Generate(context.Background(), makeStudents(2), nil)

	assert.False(t, res.Success)
	assert.Equal(t, 0, res.Completed)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, "all documents failed to generate", res.Reason)
	assert.Nil(t, res.Archive)
}

func TestGenerateCancelledMidJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	rendered := 0
	renderer := &stubRenderer{onRender: func(student.Student) {
		rendered++
		if rendered == 2 {
			cancel()
		}
	}}
	gen := NewGenerator(renderer, nopLogger{})

	res := gen.Generate(ctx, makeStudents(5), nil)

	// cancellation is checked between items, so the in-flight render
	// completes and nothing after it starts
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.Completed)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, "cancelled", res.Reason)
	assert.Nil(t, res.Archive)
	assert.Equal(t, 2, rendered)
}

func TestGenerateCancelledBeforePackaging(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	renderer := &stubRenderer{onRender: func(std student.Student) {
		if std.ID == "std-3" {
			cancel() // fires during the last item
		}
	}}
	gen := NewGenerator(renderer, nopLogger{})

	res := gen.Generate(ctx, makeStudents(3), nil)

	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Completed)
	assert.Equal(t, "cancelled", res.Reason)
	assert.Nil(t, res.Archive)
}

func TestGenerateEmptyRoster(t *testing.T) {
	gen := NewGenerator(&stubRenderer{}, nopLogger{})

	res := gen.Generate(context.Background(), nil, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "all documents failed to generate", res.Reason)
}
