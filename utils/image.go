package utils

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrNotAnImage is returned when an uploaded file does not decode as an
// image, whatever its filename extension claims.
var ErrNotAnImage = errors.New("file content is not a decodable image")

const maxImageSize = 10 * 1024 * 1024

// SaveImage validates that the upload decodes as an image and stores it under
// baseDir/YYYY/MM/DD with a random name. It returns the public URL path.
func SaveImage(header *multipart.FileHeader, baseDir string) (string, error) {
	if header.Size > maxImageSize {
		return "", fmt.Errorf("image exceeds %d bytes", maxImageSize)
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	// DecodeConfig reads only the header, enough to reject non-images.
	_, format, err := image.DecodeConfig(file)
	if err != nil {
		return "", ErrNotAnImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	now := time.Now()
	dir := filepath.Join(baseDir, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + "." + format
	dst := filepath.Join(dir, name)

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(file, maxImageSize)); err != nil {
		_ = os.Remove(dst)
		return "", err
	}

	return "/" + filepath.ToSlash(dst), nil
}
