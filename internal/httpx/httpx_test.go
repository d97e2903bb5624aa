package httpx

import (
	"net/url"
	"strings"
	"testing"
)

type decodeTarget struct {
	Title string `json:"title"`
}

func TestDecodeJSONToleratesUnknownFields(t *testing.T) {
	var v decodeTarget
	body := `{"title":"ok","id":"abc","createdAt":"2024-01-01T00:00:00Z"}`
	if err := DecodeJSON(strings.NewReader(body), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Title != "ok" {
		t.Fatalf("unexpected title %q", v.Title)
	}
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	var v decodeTarget
	if err := DecodeJSON(strings.NewReader(`{"title":"a"}{"title":"b"}`), &v); err == nil {
		t.Fatal("expected trailing object to be rejected")
	}
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	var v decodeTarget
	if err := DecodeJSON(strings.NewReader(`{title: nope`), &v); err == nil {
		t.Fatal("expected malformed json to be rejected")
	}
}

func TestParseLimitOffsetDefaults(t *testing.T) {
	limit, offset, err := ParseLimitOffset(url.Values{}, 20, 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if limit != 20 || offset != 0 {
		t.Fatalf("unexpected defaults limit=%d offset=%d", limit, offset)
	}
}

func TestParseLimitOffsetCapsLimit(t *testing.T) {
	values := url.Values{"limit": {"500"}, "offset": {"10"}}
	limit, offset, err := ParseLimitOffset(values, 20, 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if limit != 100 || offset != 10 {
		t.Fatalf("unexpected limit=%d offset=%d", limit, offset)
	}
}

func TestParseLimitOffsetRejectsBadValues(t *testing.T) {
	for _, values := range []url.Values{
		{"limit": {"abc"}},
		{"limit": {"0"}},
		{"limit": {"-1"}},
		{"offset": {"-5"}},
		{"offset": {"x"}},
	} {
		if _, _, err := ParseLimitOffset(values, 20, 100); err == nil {
			t.Fatalf("expected error for %v", values)
		}
	}
}
