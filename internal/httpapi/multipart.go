package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// maxMemory is the part of a multipart body kept in memory; the rest is
// spooled to disk by net/http.
const maxMemory = 32 << 20

// saveFilePart copies the first file of field into dir, keeping the client's
// base file name. It returns "" when the field carries no file.
func saveFilePart(form *multipart.Form, field, dir string) (string, error) {
	files := form.File[field]
	if len(files) == 0 {
		return "", nil
	}
	fh := files[0]

	name := filepath.Base(strings.ReplaceAll(fh.Filename, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = field
	}

	dst := filepath.Join(dir, field)
	if err := os.MkdirAll(dst, 0o700); err != nil {
		return "", fmt.Errorf("create part dir: %w", err)
	}
	dst = filepath.Join(dst, name)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open part %s: %w", field, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("copy part %s: %w", field, err)
	}
	return dst, nil
}

// formValue returns the first value of field and whether the field was sent.
func formValue(form *multipart.Form, field string) (string, bool) {
	vs, ok := form.Value[field]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
