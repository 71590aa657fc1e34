package kvstore

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	// 清掉共享内存库里上一个用例的数据。
	db.Exec("DROP TABLE IF EXISTS kv_entries")

	store, err := NewGormStore(db)
	if err != nil {
		t.Fatalf("new gorm store: %v", err)
	}
	return store
}

func TestGormStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestGormStore(t)

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "k", []byte(`{"n":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(data) != `{"n":1}` {
		t.Fatalf("get: data=%q ok=%v err=%v", data, ok, err)
	}

	// 同键重写应走 upsert，不产生第二行。
	if err := s.Set(ctx, "k", []byte(`{"n":2}`)); err != nil {
		t.Fatalf("set again: %v", err)
	}
	data, _, _ = s.Get(ctx, "k")
	if string(data) != `{"n":2}` {
		t.Fatalf("after upsert: %q", data)
	}

	var count int64
	s.db.Model(&Entry{}).Count(&count)
	if count != 1 {
		t.Fatalf("row count = %d", count)
	}

	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("key should be gone")
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove twice: %v", err)
	}
}

func TestGormStore_JSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := newTestGormStore(t)

	type settings struct {
		Theme    string `json:"theme"`
		DarkMode bool   `json:"darkMode"`
	}

	if err := SetJSON(ctx, s, KeyTheme, settings{Theme: "classic", DarkMode: true}); err != nil {
		t.Fatalf("set json: %v", err)
	}

	var out settings
	ok, err := GetJSON(ctx, s, KeyTheme, &out)
	if err != nil || !ok || out.Theme != "classic" || !out.DarkMode {
		t.Fatalf("get json: out=%+v ok=%v err=%v", out, ok, err)
	}
}
