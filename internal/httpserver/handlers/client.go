package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/deps"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
)

// ListApps serves the SN-filtered catalog with optional keyword search.
func ListApps(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sn := strings.TrimSpace(r.URL.Query().Get("sn"))
		keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))

		entries, err := d.Core.VisibleTo(r.Context(), sn)
		if err != nil {
			d.Logger.Error("failed to load catalog", logger.Error(err))
			writeClientErr(w, d, 1001, "internal error")
			return
		}

		if keyword != "" {
			needle := strings.ToLower(keyword)
			matched := entries[:0]
			for _, e := range entries {
				if strings.Contains(strings.ToLower(e.AppName), needle) ||
					strings.Contains(strings.ToLower(e.PackageName), needle) {
					matched = append(matched, e)
				}
			}
			entries = matched
		}

		d.Logger.Debug("client catalog request",
			logger.String("sn", sn),
			logger.String("keyword", keyword),
			logger.Int("results", len(entries)))

		writeClientOK(w, d, searchItems(entries, d.DefaultIconURL))
	}
}

// SystemApps serves the unfiltered catalog (system/auto-update listings).
func SystemApps(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := d.Core.List(r.Context())
		if err != nil {
			d.Logger.Error("failed to load catalog", logger.Error(err))
			writeClientErr(w, d, 1001, "internal error")
			return
		}
		writeClientOK(w, d, searchItems(entries, d.DefaultIconURL))
	}
}

// RecommendApps always serves an empty list; recommendations are disabled.
func RecommendApps(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeClientOK(w, d, []searchItem{})
	}
}

// Ack acknowledges report/installed pings without storing anything.
func Ack(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeClientOK(w, d, nil)
	}
}

type apkData struct {
	ID        int64  `json:"id"`
	ApkName   string `json:"apkName"`
	Version   string `json:"version"`
	URL       string `json:"url"`
	Size      int64  `json:"size"`
	MD5       string `json:"md5"`
	PatchInfo any    `json:"patchInfo"`
}

// ApkDetails serves the download record for one entry. Unknown IDs fall back
// to the first catalog entry, matching what the firmware tolerates.
func ApkDetails(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := d.Core.List(r.Context())
		if err != nil {
			d.Logger.Error("failed to load catalog", logger.Error(err))
			writeClientErr(w, d, 1001, "internal error")
			return
		}
		if len(entries) == 0 {
			writeClientErr(w, d, 1000, "App list is empty")
			return
		}

		found := entries[0]
		if id, err := strconv.ParseInt(r.URL.Query().Get("appId"), 10, 64); err == nil {
			for i := range entries {
				if entries[i].ID == id {
					found = entries[i]
					break
				}
			}
		}

		m := mapEntry(&found, d.DefaultIconURL)
		writeClientOK(w, d, apkData{
			ID:      m.ID,
			ApkName: m.ApkName,
			Version: m.ApkVersion,
			URL:     m.ApkURL,
			Size:    m.ApkSize,
			MD5:     m.ApkMD5,
		})
	}
}

// BizListRedirect forces legacy biz/list callers onto /apps, keeping their
// query parameters.
func BizListRedirect(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := "/iot-study/appStore/apps"
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

func searchItems(entries []domain.CatalogEntry, defaultIconURL string) []searchItem {
	items := make([]searchItem, 0, len(entries))
	for i := range entries {
		items = append(items, mapSearchItem(&entries[i], defaultIconURL))
	}
	return items
}
