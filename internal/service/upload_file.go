package service

import (
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ThumbnailWidth is the maximum width of a generated thumbnail.
const ThumbnailWidth = 320

var ErrInvalidFileType = errors.New("invalid file type")

var photoContentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

func InArray[T comparable](val T, array []T) bool {
	for _, v := range array {
		if val == v {
			return true
		}
	}
	return false
}

// Storage writes uploaded files below a base directory. Returned paths are
// relative to that directory with forward slashes, ready to be served under
// /media.
type Storage struct {
	baseDir string
}

func NewStorage(baseDir string) *Storage {
	return &Storage{baseDir: baseDir}
}

func (s *Storage) BaseDir() string {
	return s.baseDir
}

// SavePhoto stores an uploaded jpeg, png or webp photo in folder together with a
// thumbnail at most ThumbnailWidth pixels wide.
func (s *Storage) SavePhoto(file *multipart.FileHeader, folder string) (string, string, error) {
	if file == nil {
		return "", "", errors.New("photo is required")
	}

	contentType := file.Header.Get("Content-Type")
	if !InArray(contentType, photoContentTypes) {
		return "", "", errors.Wrapf(ErrInvalidFileType, "expected %v, got %q", photoContentTypes, contentType)
	}

	src, err := file.Open()
	if err != nil {
		return "", "", errors.Wrap(err, "opening upload")
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("closing upload")
		}
	}()

	return s.savePhoto(src, folder, contentType)
}

func (s *Storage) savePhoto(src io.Reader, folder, contentType string) (string, string, error) {
	folder = filepath.Clean(filepath.FromSlash(folder))
	if escapes(folder) {
		return "", "", errors.Errorf("media folder %q escapes the media directory", folder)
	}

	targetDir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(targetDir, os.ModePerm); err != nil {
		return "", "", errors.Wrap(err, "creating media folder")
	}

	ext := ".jpg"
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	}
	name := uuid.NewString()

	photoRel := filepath.ToSlash(filepath.Join(folder, name+ext))
	thumbRel := filepath.ToSlash(filepath.Join(folder, name+"_thumb.jpg"))

	out, err := os.Create(filepath.Join(s.baseDir, photoRel))
	if err != nil {
		return "", "", errors.Wrap(err, "creating photo file")
	}
	defer out.Close()

	// Decode while copying so the upload is read only once.
	img, _, err := image.Decode(io.TeeReader(src, out))
	if err != nil {
		_ = os.Remove(out.Name())
		return "", "", errors.Wrapf(ErrInvalidFileType, "decoding photo: %v", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		return "", "", errors.Wrap(err, "writing photo")
	}

	thumb, err := os.Create(filepath.Join(s.baseDir, thumbRel))
	if err != nil {
		return "", "", errors.Wrap(err, "creating thumbnail file")
	}
	defer thumb.Close()

	if err := jpeg.Encode(thumb, Thumbnail(img, ThumbnailWidth), &jpeg.Options{Quality: 80}); err != nil {
		return "", "", errors.Wrap(err, "encoding thumbnail")
	}

	return photoRel, thumbRel, nil
}

// Thumbnail scales img down to maxWidth keeping the aspect ratio. Images
// already narrow enough are returned unchanged.
func Thumbnail(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return img
	}

	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// Resolve maps a media path to a file below the base directory. Paths
// escaping the base directory are rejected.
func (s *Storage) Resolve(rel string) (string, error) {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if rel == "" {
		return "", errors.New("empty media path")
	}

	clean := filepath.Clean(filepath.FromSlash(rel))
	if escapes(clean) {
		return "", errors.Errorf("media path %q escapes the media directory", rel)
	}

	return filepath.Join(s.baseDir, clean), nil
}

// escapes reports whether a cleaned relative path leaves the base directory.
func escapes(clean string) bool {
	return clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean)
}
