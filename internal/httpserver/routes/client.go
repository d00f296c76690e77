package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/deps"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/handlers"
)

func init() { Register(registerClient) }

// Device-facing API. Paths and response envelopes match what the fleet's
// client firmware expects, so they are not open to change.
func registerClient(r chi.Router, d deps.Deps) {
	r.Route("/iot-study/appStore", func(r chi.Router) {
		r.Get("/apps", handlers.ListApps(d))
		r.Get("/apk", handlers.ApkDetails(d))
		r.Get("/system/apps", handlers.SystemApps(d))
		r.Post("/getAutoUpdateList", handlers.SystemApps(d))
		r.Post("/recommend/appList", handlers.RecommendApps(d))
		r.Post("/report", handlers.Ack(d))
		r.Get("/installed", handlers.Ack(d))
		r.Post("/installed", handlers.Ack(d))
		// Old firmware hardcodes biz/list; force it onto /apps.
		r.Get("/biz/list", handlers.BizListRedirect(d))
		r.Post("/biz/list", handlers.BizListRedirect(d))
	})
}
