package deps

import (
	"time"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/blob"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/catalog"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedHosts   []string         // Host headers allowed on admin routes
	AllowedCIDRS   []string         // IPs/CIDRs allowed on admin routes
	TrustProxy     bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Core           *catalog.Service // authorization & mutation core
	Uploader       blob.Uploader    // APK artifact storage (nil => uploads disabled)
	PublicDomain   string           // domain serving uploaded artifacts
	DefaultIconURL string           // fallback icon for entries without one
	MaxUploadBytes int64            // APK upload size cap
}
