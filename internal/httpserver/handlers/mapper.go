package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
)

// The client firmware consumes a much wider record than the catalog stores.
// Most of the extra fields are fixed values the devices require but never
// vary per entry; they are reproduced here verbatim.

type permission struct {
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	DescEng string `json:"descEng"`
}

var defaultPermissions = []permission{
	{
		Name:    "互联网",
		Desc:    "允许应用打开网络套接字。",
		DescEng: "Allows applications to open network sockets.",
	},
	{
		Name:    "读取电话状态",
		Desc:    "允许只读访问电话状态...",
		DescEng: "Allows read only access to phone state...",
	},
}

var defaultTags = []domain.EntryTag{
	{Name: "通用", BgColor: "#FFF2D0", TextColor: "#C1A161"},
}

// mappedApp is the detailed per-entry record (apk-details shape).
type mappedApp struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	EnName            string           `json:"enName"`
	Summary           string           `json:"summary"`
	Icon              string           `json:"icon"`
	ApkURL            string           `json:"apkUrl"`
	ApkName           string           `json:"apkName"`
	ApkSize           int64            `json:"apkSize"`
	ApkSizeStr        string           `json:"apkSizeStr"`
	ApkVersion        string           `json:"apkVersion"`
	ApkMD5            string           `json:"apkMd5"`
	Remark            string           `json:"remark"`
	ChangeLog         string           `json:"changeLog"`
	Developer         string           `json:"developer"`
	UploadTime        int64            `json:"uploadTime"`
	PreviewPics       []string         `json:"previewPics"`
	IsSensitive       int              `json:"isSensitive"`
	StatusInPad       int              `json:"statusInPad"`
	OnShelf           int              `json:"onShelf"`
	Entertainment     int              `json:"entertainment"`
	EntertainmentLbl  string           `json:"entertainmentLabel"`
	Advertisement     int              `json:"advertisement"`
	AdvertisementLbl  string           `json:"advertisementLabel"`
	BrowseWeb         int              `json:"browseWeb"`
	Supervise         int              `json:"supervise"`
	Risk              int              `json:"risk"`
	BrowseWebLabel    string           `json:"browseWebLabel"`
	IsMonitored       bool             `json:"isMonitored"`
	Type              int              `json:"type"`
	IsCtlWhite        int              `json:"isCtlWhite"`
	IsGreenApp        int              `json:"isGreenApp"`
	Age               int              `json:"age"`
	AgeLabel          string           `json:"ageLabel"`
	ContainPayContent int              `json:"containPayContent"`
	PayContentLabel   string           `json:"payContentLabel"`
	ICPNumber         string           `json:"icpNumber"`
	PrivacyLink       string           `json:"privacyLink"`
	Permissions       []permission     `json:"permissions"`
	Tags              []domain.EntryTag `json:"tags"`
	From              int              `json:"from"`
	RemoteInstallMsg  string           `json:"remoteInstallMsg"`
	AppIDThird        int              `json:"appIdThird"`
	VersionCodeThird  int              `json:"versionCodeThird"`
	ExtraThird        string           `json:"extraThird"`
	Ctl               int              `json:"ctl"`
	BizPicture        string           `json:"bizPicture"`
}

// searchItem is the slimmer record returned by list/search endpoints.
type searchItem struct {
	ApkName          string `json:"apkName"`
	Ctl              int    `json:"ctl"`
	IsCtlWhite       int    `json:"isCtlWhite"`
	IsGreenApp       int    `json:"isGreenApp"`
	Supervise        int    `json:"supervise"`
	Risk             int    `json:"risk"`
	Icon             string `json:"icon"`
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Source           int    `json:"source"`
	Size             int64  `json:"size"`
	SizeStr          string `json:"sizeStr"`
	Summary          string `json:"summary"`
	Version          string `json:"version"`
	Type             int    `json:"type"`
	InstallNum       int    `json:"installNum"`
	EnName           string `json:"enName"`
	IsEqualKeyword   int    `json:"isEqualKeyword"`
	PublishTime      int64  `json:"publishTime"`
	AppIDThird       int    `json:"appIdThird"`
	VersionCodeThird int    `json:"versionCodeThird"`
	ExtraThird       string `json:"extraThird"`
	DownloadURL      string `json:"downloadUrl"`
}

// mapEntry projects a catalog entry onto the detailed client record.
func mapEntry(e *domain.CatalogEntry, defaultIconURL string) mappedApp {
	sizeBytes, _ := strconv.ParseInt(e.Size, 10, 64)

	icon := e.IconURL
	if icon == "" {
		icon = defaultIconURL
	}

	name := e.AppName
	if name == "" {
		name = "未命名应用"
	}

	pkg := e.PackageName
	if pkg == "" {
		base := strings.ReplaceAll(strings.ToLower(name), " ", "_")
		pkg = "com.default." + base
	}

	version := e.VersionName
	if version == "" {
		version = e.Version
	}
	if version == "" {
		version = "1.0"
	}

	uploadTime, err := strconv.ParseInt(e.UpdateTime, 10, 64)
	if err != nil {
		uploadTime = time.Now().UnixMilli()
	}

	tags := e.Tags
	if len(tags) == 0 {
		tags = defaultTags
	}

	previews := make([]string, 5)
	for i := range previews {
		previews[i] = icon
	}

	return mappedApp{
		ID:                e.ID,
		Name:              name,
		EnName:            e.EnName,
		Summary:           e.Desc,
		Icon:              icon,
		ApkURL:            e.DownloadURL,
		ApkName:           pkg,
		ApkSize:           sizeBytes,
		ApkSizeStr:        formatSize(sizeBytes),
		ApkVersion:        version,
		ApkMD5:            e.MD5,
		Remark:            e.Desc,
		ChangeLog:         e.Changelog,
		Developer:         e.Publisher,
		UploadTime:        uploadTime,
		PreviewPics:       previews,
		IsMonitored:       true,
		OnShelf:           1,
		Entertainment:     1,
		EntertainmentLbl:  "轻度娱乐",
		Type:              1,
		IsCtlWhite:        1,
		IsGreenApp:        1,
		Age:               8,
		AgeLabel:          "8岁+",
		ContainPayContent: 1,
		PayContentLabel:   "含三方付费项目",
		ICPNumber:         "京ICP备xxxxxx号",
		PrivacyLink:       "#",
		Permissions:       defaultPermissions,
		Tags:              tags,
	}
}

// mapSearchItem projects a catalog entry onto the list/search record.
func mapSearchItem(e *domain.CatalogEntry, defaultIconURL string) searchItem {
	m := mapEntry(e, defaultIconURL)
	return searchItem{
		ApkName:     m.ApkName,
		IsCtlWhite:  m.IsCtlWhite,
		IsGreenApp:  m.IsGreenApp,
		Icon:        m.Icon,
		ID:          m.ID,
		Name:        m.Name,
		Source:      2,
		Size:        m.ApkSize,
		SizeStr:     m.ApkSizeStr,
		Summary:     m.Summary,
		Version:     m.ApkVersion,
		Type:        2,
		InstallNum:  114514,
		EnName:      m.EnName,
		PublishTime: m.UploadTime,
		DownloadURL: m.ApkURL,
	}
}

// formatSize renders a byte count the way the devices display it: megabytes
// with one decimal when large enough, otherwise kilobytes or raw bytes.
func formatSize(bytes int64) string {
	mb := float64(bytes) / (1024 * 1024)
	switch {
	case mb >= 1:
		return fmt.Sprintf("%.1fM", mb)
	case bytes < 1024:
		return fmt.Sprintf("%dB", bytes)
	default:
		return fmt.Sprintf("%.1fKB", float64(bytes)/1024)
	}
}
