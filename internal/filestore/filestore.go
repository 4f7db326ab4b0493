// Package filestore manages the per-document directories holding pipeline
// stage artifacts, laid out as <base path>/<document id>/...
package filestore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileStore copies and deletes per-document artifact directories under a
// single base path.
type FileStore struct {
	basePath string
}

// New constructs a FileStore rooted at the given base path.
func New(basePath string) *FileStore {
	return &FileStore{basePath: basePath}
}

// DocumentDir returns the artifact directory of the given document.
func (f *FileStore) DocumentDir(documentID string) string {
	return filepath.Join(f.basePath, documentID)
}

// CopyDocumentFiles recursively duplicates the source document's artifact
// directory into the target document's directory. A missing source directory
// means there is nothing to copy and is not an error.
func (f *FileStore) CopyDocumentFiles(sourceDocumentID, targetDocumentID string) error {
	sourceDir := f.DocumentDir(sourceDocumentID)
	targetDir := f.DocumentDir(targetDocumentID)

	info, err := os.Stat(sourceDir)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Wrap(err, "failed to stat source document directory")
	}
	if !info.IsDir() {
		return errors.Errorf("source document path %s is not a directory", sourceDir)
	}

	return copyDir(sourceDir, targetDir)
}

// DeleteDocumentFiles recursively removes the given document's artifact
// directory.
func (f *FileStore) DeleteDocumentFiles(documentID string) error {
	err := os.RemoveAll(f.DocumentDir(documentID))
	if err != nil {
		return errors.Wrap(err, "failed to remove document directory")
	}
	return nil
}

func copyDir(sourceDir, targetDir string) error {
	return filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.Wrapf(err, "failed to walk %s", path)
		}

		relative, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return errors.Wrapf(err, "failed to relativize %s", path)
		}
		target := filepath.Join(targetDir, relative)

		if info.IsDir() {
			err = os.MkdirAll(target, info.Mode())
			if err != nil {
				return errors.Wrapf(err, "failed to create directory %s", target)
			}
			return nil
		}

		return copyFile(path, target, info.Mode())
	})
}

func copyFile(source, target string, mode os.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", source)
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", target)
	}

	_, err = io.Copy(out, in)
	if err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to copy %s", source)
	}

	err = out.Close()
	if err != nil {
		return errors.Wrapf(err, "failed to finalize %s", target)
	}

	return nil
}
