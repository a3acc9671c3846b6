// Package files moves files between local filesystem and TAPIS storage systems.
package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	apifiles "github.com/designsafe-ci/dapi/api-types/files"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/log"
	"github.com/designsafe-ci/dapi/pkg/tapis"
	"github.com/mholt/archiver/v3"
	"go.uber.org/zap"
)

// DefaultListLimit is the page size of List when limit is not positive.
const DefaultListLimit = 100

type Files struct {
	client   tapis.Client
	progress io.Writer
}

type Option func(*Files) *Files

// WithProgress shows progress bars of transfers on w.
func WithProgress(w io.Writer) Option {
	return func(f *Files) *Files {
		f.progress = w
		return f
	}
}

func New(client tapis.Client, options ...Option) *Files {
	f := &Files{client: client}
	for _, opt := range options {
		f = opt(f)
	}
	return f
}

const counterBar pb.ProgressBarTemplate = `{{with string . "prefix"}}{{.}} {{end}}{{counters . }} {{speed . }}`

func (f *Files) startBar(total int64, prefix string) *pb.ProgressBar {
	var bar *pb.ProgressBar
	if total < 0 {
		bar = counterBar.New(-1)
	} else {
		bar = pb.New64(total)
	}
	bar.Set(pb.Bytes, true)
	bar.Set("prefix", prefix)
	if f.progress == nil {
		bar.SetWriter(io.Discard)
	} else {
		bar.SetWriter(f.progress)
	}
	return bar.Start()
}

// Upload uploads the local regular file to remoteURI.
func (f *Files) Upload(ctx context.Context, localPath string, remoteURI string) error {
	stat, err := os.Stat(localPath)
	if err != nil {
		return derr.Wrap(derr.ErrFileOperation, err, "local file not found: %s", localPath)
	}
	if !stat.Mode().IsRegular() {
		return fmt.Errorf("%w: local path '%s' is not a file", derr.ErrFileOperation, localPath)
	}

	system, remote, err := ParseURI(remoteURI)
	if err != nil {
		return err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return derr.Wrap(derr.ErrFileOperation, err, "cannot open %s", localPath)
	}
	defer src.Close()

	log.Named(log.Files).Info(
		"uploading",
		zap.String("local", localPath), zap.String("system", system), zap.String("path", remote),
	)

	bar := f.startBar(stat.Size(), "uploading "+filepath.Base(localPath)+":")
	defer bar.Finish()

	if err := f.client.InsertFile(ctx, system, remote, bar.NewProxyReader(src)); err != nil {
		return derr.Wrap(derr.ErrFileOperation, err, "upload failed for '%s' to '%s'", localPath, remoteURI)
	}
	return nil
}

// Download downloads the file at remoteURI to localPath.
//
// localPath must not be a directory. Missing parent directories are created.
func (f *Files) Download(ctx context.Context, remoteURI string, localPath string) error {
	if stat, err := os.Stat(localPath); err == nil && stat.IsDir() {
		return fmt.Errorf(
			"%w: local path '%s' is a directory. specify a full file path",
			derr.ErrFileOperation, localPath,
		)
	}

	system, remote, err := ParseURI(remoteURI)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(localPath); dir != "" {
		if err := os.MkdirAll(dir, os.FileMode(0777)); err != nil {
			return derr.Wrap(derr.ErrFileOperation, err, "cannot create directory %s", dir)
		}
	}

	log.Named(log.Files).Info(
		"downloading",
		zap.String("system", system), zap.String("path", remote), zap.String("local", localPath),
	)

	err = f.client.GetFileContents(ctx, system, remote, false, func(r io.Reader) error {
		return f.save(r, localPath, "downloading "+filepath.Base(localPath)+":")
	})
	if err != nil {
		if tapis.IsNotFound(err) {
			return derr.Wrap(derr.ErrFileOperation, err, "remote file not found at '%s'", remoteURI)
		}
		return derr.Wrap(derr.ErrFileOperation, err, "download failed for '%s'", remoteURI)
	}
	return nil
}

// save writes r into dest. dest is removed if writing fails.
func (f *Files) save(r io.Reader, dest string, prefix string) error {
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(0666))
	if err != nil {
		return err
	}

	bar := f.startBar(-1, prefix)
	_, err = io.Copy(bar.NewProxyWriter(out), r)
	bar.Finish()
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
	}
	return err
}

// DownloadDir downloads the directory at remoteURI, and extracts it into localDir.
//
// Existing files in localDir are overwritten.
func (f *Files) DownloadDir(ctx context.Context, remoteURI string, localDir string) error {
	system, remote, err := ParseURI(remoteURI)
	if err != nil {
		return err
	}

	tmp, err := os.MkdirTemp("", "dapi-download-")
	if err != nil {
		return derr.Wrap(derr.ErrFileOperation, err, "cannot create temporary directory")
	}
	defer os.RemoveAll(tmp)
	zipfile := filepath.Join(tmp, "contents.zip")

	err = f.client.GetFileContents(ctx, system, remote, true, func(r io.Reader) error {
		return f.save(r, zipfile, "downloading "+remoteURI+":")
	})
	if err != nil {
		if tapis.IsNotFound(err) {
			return derr.Wrap(derr.ErrFileOperation, err, "remote directory not found at '%s'", remoteURI)
		}
		return derr.Wrap(derr.ErrFileOperation, err, "download failed for '%s'", remoteURI)
	}

	z := archiver.NewZip()
	z.OverwriteExisting = true
	z.MkdirAll = true
	if err := z.Unarchive(zipfile, localDir); err != nil {
		return derr.Wrap(derr.ErrFileOperation, err, "cannot extract '%s' into %s", remoteURI, localDir)
	}
	return nil
}

// List lists files at remoteURI. limit <= 0 means DefaultListLimit.
func (f *Files) List(ctx context.Context, remoteURI string, limit int, offset int) ([]apifiles.FileInfo, error) {
	system, remote, err := ParseURI(remoteURI)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	found, err := f.client.ListFiles(ctx, system, remote, limit, offset)
	if err != nil {
		if tapis.IsNotFound(err) {
			return nil, derr.Wrap(derr.ErrFileOperation, err, "remote path not found at '%s'", remoteURI)
		}
		return nil, derr.Wrap(derr.ErrFileOperation, err, "listing failed for '%s'", remoteURI)
	}
	return found, nil
}
