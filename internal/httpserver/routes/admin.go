package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/deps"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/handlers"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

// Manager-facing catalog administration, basic-auth gated. Supers pass the
// manager gate too.
func registerAdmin(r chi.Router, d deps.Deps) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(
			mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
			mw.EnforceHost(d.AllowedHosts, d.Logger),
		)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(d.Core, domain.RoleManager, d.Logger))
			r.Get("/apps", handlers.AdminListApps(d))
			r.Post("/apps", handlers.AdminCreateApp(d))
			r.Delete("/apps/{id}", handlers.AdminDeleteApp(d))
			r.Post("/upload", handlers.AdminUploadApk(d))
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(d.Core, domain.RoleSuper, d.Logger))
			r.Get("/accounts", handlers.SuperListAccounts(d))
			r.Post("/accounts", handlers.SuperAddManager(d))
			r.Patch("/accounts/{username}", handlers.SuperUpdateManager(d))
			r.Get("/sn", handlers.SuperListSN(d))
			r.Put("/sn/{sn}", handlers.SuperAssignSN(d))
			r.Delete("/sn/{sn}", handlers.SuperReleaseSN(d))
		})
	})
}
