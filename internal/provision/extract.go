package provision

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
)

// extractExecutable pulls the named executable out of an archive and writes
// it to outputPath. Archive entries are matched on base name, since release
// tarballs may nest the binary under a top-level directory.
func extractExecutable(archive []byte, zipFormat bool, executable, outputPath string) error {
	if zipFormat {
		return extractFromZip(archive, executable, outputPath)
	}
	return extractFromTarGz(archive, executable, outputPath)
}

func extractFromTarGz(archive []byte, executable, outputPath string) error {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return fmt.Errorf("reading gzip archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}
		if !header.FileInfo().Mode().IsRegular() {
			continue
		}
		// Entry names use "/" separators regardless of host OS.
		if path.Base(header.Name) != executable {
			continue
		}
		return writeExecutable(outputPath, tr)
	}
	return fmt.Errorf("executable %q not found in archive", executable)
}

func extractFromZip(archive []byte, executable, outputPath string) error {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("reading zip archive: %w", err)
	}

	for _, f := range zr.File {
		if path.Base(f.Name) != executable {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening zip entry %s: %w", f.Name, err)
		}
		writeErr := writeExecutable(outputPath, rc)
		rc.Close()
		return writeErr
	}
	return fmt.Errorf("executable %q not found in archive", executable)
}

func writeExecutable(outputPath string, src io.Reader) error {
	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o700)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", outputPath, err)
	}
	return nil
}
