package setup

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const copyChunkSize = 1024 * 1024 // 1MB

var copyBufferPool = sync.Pool{
	New: func() interface{} {
		return make([]byte, copyChunkSize)
	},
}

// copyEntry copies one staging entry (file, directory or symlink) into the
// install root, preserving permissions.
func copyEntry(ctx context.Context, src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	switch {
	case info.IsDir():
		return copyTree(ctx, src, dst)
	case info.Mode()&fs.ModeSymlink != 0:
		return copySymlink(src, dst)
	default:
		return copyFile(src, dst, info.Mode().Perm())
	}
}

func copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case entry.IsDir():
			info, err := entry.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		case entry.Type()&fs.ModeSymlink != 0:
			return copySymlink(path, target)
		default:
			info, err := entry.Info()
			if err != nil {
				return err
			}
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read link %s: %w", src, err)
	}
	return os.Symlink(link, dst)
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	// os.File carries ReadFrom and WriteTo fast paths that make CopyBuffer
	// ignore its buffer; the bare interfaces keep the copy on pooled chunks.
	buf := copyBufferPool.Get().([]byte)
	_, err = io.CopyBuffer(struct{ io.Writer }{out}, struct{ io.Reader }{in}, buf)
	copyBufferPool.Put(buf)

	if err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}

	return nil
}
