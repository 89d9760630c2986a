package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	return img
}

func TestThumbnailKeepsAspectRatio(t *testing.T) {
	thumb := Thumbnail(testImage(1280, 960), ThumbnailWidth)
	b := thumb.Bounds()
	if b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("expected 320x240, got %dx%d", b.Dx(), b.Dy())
	}

	small := testImage(200, 100)
	if Thumbnail(small, ThumbnailWidth) != small {
		t.Fatal("narrow images should be returned unchanged")
	}
}

func TestSavePhoto(t *testing.T) {
	dir := t.TempDir()
	s := NewStorage(dir)

	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(640, 480)); err != nil {
		t.Fatal(err)
	}
	want := buf.Len()

	photo, thumb, err := s.savePhoto(&buf, "P1", "image/png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Ext(photo) != ".png" || filepath.Dir(photo) != "P1" {
		t.Fatalf("unexpected photo path %q", photo)
	}

	info, err := os.Stat(filepath.Join(dir, photo))
	if err != nil {
		t.Fatal(err)
	}
	if int(info.Size()) != want {
		t.Fatalf("photo truncated: %d of %d bytes", info.Size(), want)
	}

	f, err := os.Open(filepath.Join(dir, thumb))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 320 || cfg.Height != 240 {
		t.Fatalf("expected 320x240 thumbnail, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestSavePhotoRejectsGarbage(t *testing.T) {
	s := NewStorage(t.TempDir())
	_, _, err := s.savePhoto(bytes.NewBufferString("not an image"), "P1", "image/jpeg")
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("expected ErrInvalidFileType, got %v", err)
	}
}

func TestSavePhotoStaysInsideBaseDir(t *testing.T) {
	root := t.TempDir()
	s := NewStorage(filepath.Join(root, "media"))

	for _, folder := range []string{"../outside", "P1/../../outside", "/abs"} {
		var buf bytes.Buffer
		if err := png.Encode(&buf, testImage(10, 10)); err != nil {
			t.Fatal(err)
		}
		if _, _, err := s.savePhoto(&buf, folder, "image/png"); err == nil {
			t.Fatalf("expected folder %q to be rejected", folder)
		}
	}

	if _, err := os.Stat(filepath.Join(root, "outside")); !os.IsNotExist(err) {
		t.Fatalf("nothing should be written outside the media dir, stat: %v", err)
	}
}

func TestSavePhotoNamesAreUnique(t *testing.T) {
	s := NewStorage(t.TempDir())

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		var buf bytes.Buffer
		if err := png.Encode(&buf, testImage(10, 10)); err != nil {
			t.Fatal(err)
		}
		photo, _, err := s.savePhoto(&buf, "P1", "image/png")
		if err != nil {
			t.Fatal(err)
		}
		if seen[photo] {
			t.Fatalf("photo path %q reused", photo)
		}
		seen[photo] = true
	}
}

func TestResolve(t *testing.T) {
	s := NewStorage("/srv/media")

	got, err := s.Resolve("/P1/1.jpg")
	if err != nil || got != filepath.Join("/srv/media", "P1", "1.jpg") {
		t.Fatalf("unexpected %q, %v", got, err)
	}

	for _, bad := range []string{"", "../etc/passwd", "P1/../../secret", ".."} {
		if _, err := s.Resolve(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}
