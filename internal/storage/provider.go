// Package storage keeps uploaded and dropped files on the local disk.
package storage

import "time"

// File describes one stored file.
type File struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Provider is the interface for file operations relative to a root directory.
type Provider interface {
	// List returns the files directly inside dir whose name ends in ext.
	List(dir, ext string) ([]File, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Archive stores content under a name derived from its digest and returns
	// that relative path. Storing identical content twice is a no-op and
	// reports created as false.
	Archive(content []byte, ext string) (rel string, created bool, err error)
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
