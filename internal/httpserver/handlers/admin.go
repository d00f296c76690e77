package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/deps"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/mw"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
)

// adminApp is the catalog entry as seen by the admin API. Mine marks rows
// the caller owns; AllowedSN is nil on rows the caller is not allowed to
// inspect.
type adminApp struct {
	domain.CatalogEntry
	Mine bool `json:"mine"`
}

// AdminListApps returns the full catalog with ownership annotated. Managers
// see every row but only their own whitelists; super sees everything.
func AdminListApps(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := mw.PrincipalFrom(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, apiError{Error: "no principal"})
			return
		}

		entries, err := d.Core.List(r.Context())
		if err != nil {
			writeDomainErr(w, err)
			return
		}

		out := make([]adminApp, 0, len(entries))
		for _, e := range entries {
			mine := e.Owner == p.ID
			if !mine && p.Role != domain.RoleSuper {
				e.AllowedSN = nil
			}
			out = append(out, adminApp{CatalogEntry: e, Mine: mine})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createAppRequest is the admin create payload. ID, when present, is used
// as-is and must be unique; AllowedSN absent means public.
type createAppRequest struct {
	ID          *int64   `json:"id"`
	AppName     string   `json:"appName"`
	PackageName string   `json:"packageName"`
	DownloadURL string   `json:"downloadUrl"`
	IconURL     string   `json:"iconUrl"`
	MD5         string   `json:"md5"`
	Size        string   `json:"size"`
	Desc        string   `json:"desc"`
	Category    string   `json:"category"`
	Publisher   string   `json:"publisher"`
	Version     string   `json:"version"`
	AllowedSN   []string `json:"allowedSn"`
}

// AdminCreateApp publishes a new catalog entry owned by the caller.
func AdminCreateApp(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := mw.PrincipalFrom(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, apiError{Error: "no principal"})
			return
		}

		var req createAppRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json: " + err.Error()})
			return
		}

		for field, val := range map[string]string{
			"appName":     req.AppName,
			"packageName": req.PackageName,
			"downloadUrl": req.DownloadURL,
			"size":        req.Size,
			"md5":         req.MD5,
		} {
			if val == "" {
				writeJSON(w, http.StatusBadRequest, apiError{Error: "missing required field: " + field})
				return
			}
		}

		draft := domain.CatalogEntry{
			AppName:     req.AppName,
			PackageName: req.PackageName,
			DownloadURL: req.DownloadURL,
			IconURL:     req.IconURL,
			MD5:         req.MD5,
			Size:        req.Size,
			Desc:        req.Desc,
			Category:    req.Category,
			Publisher:   req.Publisher,
			Version:     req.Version,
			AllowedSN:   req.AllowedSN,
			Status:      1,
			Score:       5.0,
		}
		if draft.IconURL == "" {
			draft.IconURL = d.DefaultIconURL
		}
		if draft.Desc == "" {
			draft.Desc = "暂无简介"
		}
		if draft.Category == "" {
			draft.Category = "学习"
		}
		if draft.Publisher == "" {
			draft.Publisher = "未知开发者"
		}
		if draft.Version == "" {
			draft.Version = "1.0"
		}
		draft.VersionName = draft.Version
		draft.VersionCode = "1"

		created, err := d.Core.Create(r.Context(), p, draft, req.ID)
		if err != nil {
			writeDomainErr(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

// AdminDeleteApp removes an entry. Managers may only delete their own rows.
func AdminDeleteApp(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := mw.PrincipalFrom(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, apiError{Error: "no principal"})
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid app id"})
			return
		}

		info, err := d.Core.Delete(r.Context(), p, id)
		if err != nil {
			writeDomainErr(w, err)
			return
		}

		d.Logger.Info("admin deleted app",
			logger.Int64("entry_id", info.ID),
			logger.String("deleted_by", p.ID))

		writeJSON(w, http.StatusOK, map[string]any{
			"deleted": info.ID,
			"owner":   info.Owner,
		})
	}
}
