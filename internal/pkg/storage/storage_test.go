package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "fields/field_1/ab/photo.jpg", strings.NewReader("hello")))

	rc, err := s.Get(ctx, "fields/field_1/ab/photo.jpg")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "hello", string(body))

	// Overwrite replaces the object.
	require.NoError(t, s.Save(ctx, "fields/field_1/ab/photo.jpg", strings.NewReader("bye")))
	rc, err = s.Get(ctx, "fields/field_1/ab/photo.jpg")
	require.NoError(t, err)
	body, _ = io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "bye", string(body))

	require.NoError(t, s.Delete(ctx, "fields/field_1/ab/photo.jpg"))
	require.NoError(t, s.Delete(ctx, "fields/field_1/ab/photo.jpg"), "Deleting twice is fine")

	_, err = s.Get(ctx, "fields/field_1/ab/photo.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.Save(context.Background(), "../outside.txt", strings.NewReader("x")))
	_, err = s.Get(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}

func TestGenerateThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 400))
	for x := 0; x < 800; x++ {
		for y := 0; y < 400; y++ {
			src.Set(x, y, color.RGBA{R: 20, G: 160, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := NewImageProcessor().GenerateThumbnail(&buf, 200, 200)
	require.NoError(t, err)

	thumb, err := imaging.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 200, thumb.Bounds().Dx())
	assert.Equal(t, 100, thumb.Bounds().Dy())

	_, err = NewImageProcessor().GenerateThumbnail(strings.NewReader("not an image"), 200, 200)
	assert.Error(t, err)
}
