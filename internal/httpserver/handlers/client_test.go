package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/catalog"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/deps"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/store/memory"
)

func testDeps(t *testing.T, entries []domain.CatalogEntry, accounts map[string]domain.Account) deps.Deps {
	t.Helper()
	ctx := context.Background()

	catStore := memory.NewCatalog()
	if entries != nil {
		if err := catStore.Save(ctx, entries); err != nil {
			t.Fatalf("seeding catalog: %v", err)
		}
	}
	accStore := memory.NewAccounts()
	if accounts != nil {
		if err := accStore.Save(ctx, accounts); err != nil {
			t.Fatalf("seeding accounts: %v", err)
		}
	}

	log := logger.New("error", false)
	core := catalog.New(catStore, accStore, memory.NewSNRegistry(), log)

	return deps.Deps{
		Logger:         log,
		StartTime:      time.Now(),
		TimeNow:        time.Now,
		Core:           core,
		DefaultIconURL: "https://cdn.example.com/default.png",
		PublicDomain:   "dl.example.com",
		MaxUploadBytes: 1 << 20,
	}
}

func testCatalog() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{ID: 100001, Owner: "alice", AppName: "Calculator", PackageName: "com.example.calc",
			DownloadURL: "https://dl.example.com/calc.apk", Size: "1048576", AllowedSN: []string{}},
		{ID: 100002, Owner: "alice", AppName: "Private Notes", PackageName: "com.example.notes",
			DownloadURL: "https://dl.example.com/notes.apk", Size: "2048", AllowedSN: []string{"SN-1"}},
		{ID: 100003, Owner: "bob", AppName: "Legacy Tool", PackageName: "com.example.legacy",
			DownloadURL: "https://dl.example.com/legacy.apk", AllowedSN: nil},
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (envelope, []searchItem) {
	t.Helper()
	var env envelope
	raw := struct {
		*envelope
		Data json.RawMessage `json:"data"`
	}{envelope: &env}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}

	var items []searchItem
	if len(raw.Data) > 0 && string(raw.Data) != "null" {
		if err := json.Unmarshal(raw.Data, &items); err != nil {
			t.Fatalf("decoding data: %v", err)
		}
	}
	return env, items
}

func TestListAppsFiltersBySN(t *testing.T) {
	d := testDeps(t, testCatalog(), nil)
	h := ListApps(d)

	tests := []struct {
		name        string
		query       string
		expectedIDs []int64
	}{
		{name: "no sn", query: "", expectedIDs: []int64{100001}},
		{name: "whitelisted sn", query: "?sn=SN-1", expectedIDs: []int64{100001, 100002}},
		{name: "unknown sn", query: "?sn=SN-NOPE", expectedIDs: []int64{100001}},
		{name: "keyword narrows results", query: "?sn=SN-1&keyword=notes", expectedIDs: []int64{100002}},
		{name: "keyword matches package name", query: "?keyword=example.calc", expectedIDs: []int64{100001}},
		{name: "keyword is case insensitive", query: "?keyword=CALCULATOR", expectedIDs: []int64{100001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/iot-study/appStore/apps"+tt.query, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			env, items := decodeEnvelope(t, rec)
			if env.ErrNo != 0 || env.ErrMsg != "succ" {
				t.Errorf("envelope = %+v", env)
			}

			got := make([]int64, 0, len(items))
			for _, it := range items {
				got = append(got, it.ID)
			}
			if len(got) != len(tt.expectedIDs) {
				t.Fatalf("ids = %v, want %v", got, tt.expectedIDs)
			}
			for i := range got {
				if got[i] != tt.expectedIDs[i] {
					t.Errorf("ids = %v, want %v", got, tt.expectedIDs)
					break
				}
			}
		})
	}
}

func TestSystemAppsUnfiltered(t *testing.T) {
	d := testDeps(t, testCatalog(), nil)
	rec := httptest.NewRecorder()
	SystemApps(d)(rec, httptest.NewRequest(http.MethodGet, "/iot-study/appStore/system/apps", nil))

	_, items := decodeEnvelope(t, rec)
	if len(items) != 3 {
		t.Errorf("system listing returned %d items, want all 3", len(items))
	}
}

func TestRecommendAppsEmpty(t *testing.T) {
	d := testDeps(t, testCatalog(), nil)
	rec := httptest.NewRecorder()
	RecommendApps(d)(rec, httptest.NewRequest(http.MethodPost, "/iot-study/appStore/recommend/appList", nil))

	_, items := decodeEnvelope(t, rec)
	if len(items) != 0 {
		t.Errorf("recommendations = %v, want empty", items)
	}
}

func TestApkDetails(t *testing.T) {
	d := testDeps(t, testCatalog(), nil)
	h := ApkDetails(d)

	t.Run("known id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/iot-study/appStore/apk?appId=100002", nil))

		var resp struct {
			ErrNo int     `json:"errNo"`
			Data  apkData `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Data.ID != 100002 {
			t.Errorf("id = %d, want 100002", resp.Data.ID)
		}
		if resp.Data.URL != "https://dl.example.com/notes.apk" {
			t.Errorf("url = %s", resp.Data.URL)
		}
	})

	t.Run("unknown id falls back to first entry", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/iot-study/appStore/apk?appId=999999", nil))

		var resp struct {
			Data apkData `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Data.ID != 100001 {
			t.Errorf("fallback id = %d, want 100001", resp.Data.ID)
		}
	})

	t.Run("empty catalog", func(t *testing.T) {
		empty := testDeps(t, nil, nil)
		rec := httptest.NewRecorder()
		ApkDetails(empty)(rec, httptest.NewRequest(http.MethodGet, "/iot-study/appStore/apk", nil))

		env, _ := decodeEnvelope(t, rec)
		if env.ErrNo != 1000 {
			t.Errorf("errNo = %d, want 1000", env.ErrNo)
		}
	})
}

func TestBizListRedirect(t *testing.T) {
	d := testDeps(t, nil, nil)
	rec := httptest.NewRecorder()
	BizListRedirect(d)(rec, httptest.NewRequest(http.MethodGet, "/iot-study/appStore/biz/list?sn=SN-1&page=2", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if loc != "/iot-study/appStore/apps?sn=SN-1&page=2" {
		t.Errorf("location = %s", loc)
	}
}

func TestAckEnvelope(t *testing.T) {
	d := testDeps(t, nil, nil)
	rec := httptest.NewRecorder()
	Ack(d)(rec, httptest.NewRequest(http.MethodPost, "/iot-study/appStore/report", nil))

	env, _ := decodeEnvelope(t, rec)
	if env.ErrNo != 0 || env.ErrMsg != "succ" {
		t.Errorf("envelope = %+v", env)
	}
	if env.LogID == "" || env.RequestID == "" {
		t.Errorf("log/request ids missing: %+v", env)
	}
}
