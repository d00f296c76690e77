package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/deps"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
)

// accountView is an account row without the password.
type accountView struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	MaxApps  *int        `json:"maxApps"`
	OwnsApps int         `json:"ownsApps"`
}

// SuperListAccounts lists all backend accounts, sorted by username.
func SuperListAccounts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := d.Core.Accounts(r.Context())
		if err != nil {
			writeDomainErr(w, err)
			return
		}

		out := make([]accountView, 0, len(accounts))
		for _, acc := range accounts {
			out = append(out, accountView{
				Username: acc.Username,
				Role:     acc.Role,
				MaxApps:  acc.MaxApps,
				OwnsApps: acc.OwnsApps,
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
		writeJSON(w, http.StatusOK, out)
	}
}

type addManagerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	MaxApps  *int   `json:"maxApps"`
}

// SuperAddManager creates a manager account.
func SuperAddManager(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addManagerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json: " + err.Error()})
			return
		}

		if err := d.Core.AddManager(r.Context(), req.Username, req.Password, req.MaxApps); err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"created": req.Username})
	}
}

type updateManagerRequest struct {
	Password string `json:"password"`
	MaxApps  *int   `json:"maxApps"`
}

// SuperUpdateManager changes a manager's password and/or quota. A quota
// below the manager's current ownership is rejected with 409.
func SuperUpdateManager(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		var req updateManagerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json: " + err.Error()})
			return
		}

		if err := d.Core.UpdateManager(r.Context(), username, req.Password, req.MaxApps); err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"updated": username})
	}
}

// snRow is one SN-ownership mapping.
type snRow struct {
	SN    string `json:"sn"`
	Owner string `json:"owner"`
}

// SuperListSN lists the SN-ownership registry, sorted by SN.
func SuperListSN(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owners, err := d.Core.SNOwners(r.Context())
		if err != nil {
			writeDomainErr(w, err)
			return
		}

		out := make([]snRow, 0, len(owners))
		for sn, owner := range owners {
			out = append(out, snRow{SN: sn, Owner: owner})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].SN < out[j].SN })
		writeJSON(w, http.StatusOK, out)
	}
}

type assignSNRequest struct {
	Owner string `json:"owner"`
}

// SuperAssignSN maps an SN code to a manager, replacing any prior owner.
func SuperAssignSN(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sn := chi.URLParam(r, "sn")

		var req assignSNRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json: " + err.Error()})
			return
		}

		if err := d.Core.AssignSN(r.Context(), sn, req.Owner); err != nil {
			writeDomainErr(w, err)
			return
		}

		d.Logger.Info("sn assignment via admin api",
			logger.String("sn", sn),
			logger.String("owner", req.Owner))
		writeJSON(w, http.StatusOK, snRow{SN: sn, Owner: req.Owner})
	}
}

// SuperReleaseSN removes an SN-ownership mapping.
func SuperReleaseSN(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sn := chi.URLParam(r, "sn")

		if err := d.Core.ReleaseSN(r.Context(), sn); err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"released": sn})
	}
}
