package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/priyanshu9046/SortMyScene/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}, "X-Test": {"a", "b"}}
	body := []byte(`{"events":[]}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(payload)
	if !ok {
		t.Fatalf("decode failed")
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if got := gotHdr.Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
	if vals := gotHdr["X-Test"]; len(vals) != 2 || vals[0] != "a" || vals[1] != "b" {
		t.Fatalf("X-Test = %v", vals)
	}
	if !bytes.Equal(gotBody, body) {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	if _, _, _, ok := decodePayload([]byte{1, 2, 3}); ok {
		t.Fatalf("short payload must not decode")
	}
	payload, _ := encodePayload(http.StatusOK, http.Header{"A": {"b"}}, []byte("x"))
	if _, _, _, ok := decodePayload(payload[:9]); ok {
		t.Fatalf("truncated header must not decode")
	}
}

func TestCacheKeyFrom(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	e := echo.New()

	key := func(target string) string {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/events")
		return cacheKeyFrom(cfg, c)
	}

	a := key("/v1/events?page=1")
	b := key("/v1/events?page=1")
	other := key("/v1/events?page=2")

	if a != b {
		t.Fatalf("same request produced different keys: %s vs %s", a, b)
	}
	if a == other {
		t.Fatalf("different queries must produce different keys")
	}
}
