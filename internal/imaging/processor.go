// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging validates and stores uploaded profile photos.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/paralympics-go/internal/util"
)

var (
	// ErrUnsupportedFormat is returned for uploads that are not JPEG, PNG, GIF or WebP.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrTooLarge is returned for uploads over the size limit.
	ErrTooLarge = errors.New("image too large")
)

// PhotosDir is the uploads subdirectory that holds profile photos.
const PhotosDir = "photos"

// MaxDimension bounds the stored photo's width and height.
const MaxDimension = 512

// jpegQuality is used for JPEG output, including converted WebP uploads.
const jpegQuality = 90

// Processor decodes, normalises and stores profile photos.
type Processor struct {
	dir      string
	maxBytes int64
}

// NewProcessor stores photos under uploadsDir/photos and rejects uploads
// larger than maxBytes.
func NewProcessor(uploadsDir string, maxBytes int64) *Processor {
	return &Processor{
		dir:      filepath.Join(uploadsDir, PhotosDir),
		maxBytes: maxBytes,
	}
}

// Dir returns the directory photos are written to.
func (p *Processor) Dir() string {
	return p.dir
}

// SavePhoto reads an uploaded image, applies its EXIF orientation, shrinks it
// to fit MaxDimension and writes it under a fresh name. It returns the stored
// file name, relative to Dir.
func (p *Processor) SavePhoto(r io.Reader, originalName string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return "", ErrTooLarge
	}

	format := detectFormat(data)
	if format == "" {
		return "", ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	b := img.Bounds()
	if b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	out, ext, err := encodeImage(img, format)
	if err != nil {
		return "", fmt.Errorf("encoding photo: %w", err)
	}

	name := storedName(originalName, ext)
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating photo directory: %w", err)
	}
	path, err := util.SafeJoin(p.dir, name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("writing photo: %w", err)
	}
	return name, nil
}

// Delete removes a stored photo. A missing file is not an error.
func (p *Processor) Delete(name string) error {
	if name == "" {
		return nil
	}
	path, err := util.SafeJoin(p.dir, filepath.Base(name))
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing photo: %w", err)
	}
	return nil
}

// storedName is <uuid>-<sanitised stem><ext>, or <uuid><ext> when nothing of
// the original name survives sanitising.
func storedName(originalName, ext string) string {
	stem := util.SecureFilename(originalName)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	id := uuid.New().String()
	if stem == "" {
		return id + ext
	}
	return id + "-" + stem + ext
}

// readExifOrientation returns 1 (normal) when no orientation tag is present.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation undoes the camera rotation recorded in EXIF
// orientation values 2 to 8.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage returns the encoded bytes and the file extension to use.
// WebP has no pure Go encoder, so it is stored as JPEG.
func encodeImage(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	var ext string
	var err error

	switch format {
	case "png":
		ext, err = ".png", png.Encode(&buf, img)
	case "gif":
		ext, err = ".gif", gif.Encode(&buf, img, nil)
	default:
		ext, err = ".jpg", jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), ext, nil
}

// detectFormat sniffs the content type. TIFF is rejected outright
// (CVE-2023-36308 in disintegration/imaging).
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	switch {
	case strings.Contains(contentType, "tiff"):
		return ""
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}
