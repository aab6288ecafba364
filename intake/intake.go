// Package intake turns user-supplied files into payloads the store accepts.
// Only the declared MIME type is consulted; content is never inspected.
package intake

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/offplay/offplay/filesystem"
	"github.com/spf13/afero"
)

var ErrUnsupported = errors.New("unsupported file type")

// File is one candidate upload.
type File struct {
	Name string
	Data []byte
	MIME string
}

// video container types some platforms' mime tables leave out
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".ogv":  "video/ogg",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".ts":   "video/mp2t",
	".3gp":  "video/3gpp",
}

func init() {
	for ext, typ := range videoTypes {
		_ = mime.AddExtensionType(ext, typ)
	}
}

// IsVideo reports whether a MIME type denotes video.
func IsVideo(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "video/")
}

// TypeOf derives the MIME type of a file name from its extension.
func TypeOf(name string) string {
	typ := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if typ == "" {
		return ""
	}
	media, _, err := mime.ParseMediaType(typ)
	if err != nil {
		return typ
	}
	return media
}

// FromPath reads a file from the application filesystem. The record name is
// the file's base name.
func FromPath(path string) (*File, error) {
	data, err := afero.ReadFile(filesystem.API(), path)
	if err != nil {
		return nil, err
	}

	return &File{
		Name: filepath.Base(path),
		Data: data,
		MIME: TypeOf(path),
	}, nil
}

// Accept validates one upload.
func Accept(f *File) error {
	if f.Name == "" {
		return fmt.Errorf("%w: empty name", ErrUnsupported)
	}
	if !IsVideo(f.MIME) {
		return fmt.Errorf("%w: %s (%s)", ErrUnsupported, f.Name, describe(f.MIME))
	}
	return nil
}

// Partition splits a batch into accepted files and per-file rejections.
func Partition(files []*File) (accepted []*File, rejected []error) {
	for _, f := range files {
		if err := Accept(f); err != nil {
			rejected = append(rejected, err)
			continue
		}
		accepted = append(accepted, f)
	}
	return
}

func describe(mimeType string) string {
	if mimeType == "" {
		return "unknown type"
	}
	return mimeType
}
