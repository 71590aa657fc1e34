package kvstore

import (
	"context"
	"testing"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "k", []byte(`"v"`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(data) != `"v"` {
		t.Fatalf("get: data=%q ok=%v err=%v", data, ok, err)
	}

	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("key should be gone")
	}

	// 幂等删除不报错。
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove twice: %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	type payload struct {
		Name string `json:"name"`
	}

	var out payload
	ok, err := GetJSON(ctx, s, "p", &out)
	if err != nil || ok {
		t.Fatalf("absent key: ok=%v err=%v", ok, err)
	}

	if err := SetJSON(ctx, s, "p", payload{Name: "ada"}); err != nil {
		t.Fatalf("set json: %v", err)
	}
	ok, err = GetJSON(ctx, s, "p", &out)
	if err != nil || !ok || out.Name != "ada" {
		t.Fatalf("get json: out=%+v ok=%v err=%v", out, ok, err)
	}
}

func TestAutoSaveKey(t *testing.T) {
	if got := AutoSaveKey(1700000000000); got != "autosave_1700000000000" {
		t.Fatalf("AutoSaveKey = %q", got)
	}
}
