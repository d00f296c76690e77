package handlers

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/deps"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/utils"
)

// uploadResponse carries the stored artifact's facts plus suggested catalog
// fields derived from the filename, so the admin UI can prefill a create.
type uploadResponse struct {
	DownloadURL string `json:"downloadUrl"`
	MD5         string `json:"md5"`
	Size        string `json:"size"`
	AppName     string `json:"appName"`
	PackageName string `json:"packageName"`
}

// AdminUploadApk receives a multipart APK, spools it to a temp file to
// compute its MD5 and size, and pushes it to the artifact bucket. The
// returned downloadUrl points at the public domain fronting the bucket.
func AdminUploadApk(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Uploader == nil {
			writeJSON(w, http.StatusServiceUnavailable, apiError{Error: "artifact storage is not configured"})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, d.MaxUploadBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "upload too large or malformed: " + err.Error()})
			return
		}

		file, header, err := r.FormFile("apk_file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "missing apk_file part"})
			return
		}
		defer utils.Close(file)

		filename := sanitizeFilename(header.Filename)
		if filename == "" || !strings.HasSuffix(strings.ToLower(filename), ".apk") {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "file must be an .apk"})
			return
		}

		tmp, err := os.CreateTemp("", "apk-upload-*")
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, apiError{Error: "temp spool failed"})
			return
		}
		defer func() {
			utils.Close(tmp)
			if err := os.Remove(tmp.Name()); err != nil {
				d.Logger.Warn("failed to remove upload spool file",
					logger.String("path", tmp.Name()),
					logger.Error(err))
			}
		}()

		hasher := md5.New()
		size, err := io.Copy(io.MultiWriter(tmp, hasher), file)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, apiError{Error: "reading upload failed"})
			return
		}
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			writeJSON(w, http.StatusInternalServerError, apiError{Error: "temp spool failed"})
			return
		}

		if err := d.Uploader.Put(r.Context(), filename, tmp, "application/vnd.android.package-archive"); err != nil {
			d.Logger.Error("artifact upload failed",
				logger.String("key", filename),
				logger.Error(err))
			writeJSON(w, http.StatusBadGateway, apiError{Error: "artifact upload failed"})
			return
		}

		d.Logger.Info("apk uploaded",
			logger.String("key", filename),
			logger.Int64("size", size))

		base := strings.TrimSuffix(filename, filepath.Ext(filename))
		writeJSON(w, http.StatusOK, uploadResponse{
			DownloadURL: fmt.Sprintf("https://%s/%s", d.PublicDomain, filename),
			MD5:         hex.EncodeToString(hasher.Sum(nil)),
			Size:        strconv.FormatInt(size, 10),
			AppName:     base,
			PackageName: "com.uploaded." + strings.ToLower(strings.ReplaceAll(base, " ", "_")),
		})
	}
}

// sanitizeFilename strips any path components and characters unsafe in a
// bucket key or URL.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '.' || c == '-' || c == '_':
			b.WriteRune(c)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
