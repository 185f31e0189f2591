package testutil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
)

func TestServeHelpers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	rr := Serve(handler, http.MethodPost, "/test", strings.NewReader("{}"))
	AssertStatus(t, rr, http.StatusCreated)
	var body map[string]bool
	DecodeJSON(t, rr, &body)
	if !body["ok"] {
		t.Fatalf("expected ok=true")
	}

	req := httptest.NewRequest(http.MethodGet, "/req", nil)
	rr2 := ServeRequest(handler, req)
	AssertStatus(t, rr2, http.StatusCreated)
}

func TestServerStubs(t *testing.T) {
	p := &StubWatcher{Err: errors.New("stop"), ReadyVal: true}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("expected nil start error, got %v", err)
	}
	if err := p.Stop(context.Background()); !errors.Is(err, p.Err) {
		t.Fatalf("expected stop error")
	}
	if p.StartCalls != 1 || p.StopCalls != 1 {
		t.Fatalf("unexpected call counts %+v", p)
	}

	sh := &StubHTTPServer{ListenErr: errors.New("boom"), ShutdownErr: errors.New("down")}
	sh.HandlerVal = http.NewServeMux()
	_ = sh.ListenAndServe()
	_ = sh.Shutdown(context.Background())
	_ = sh.Handler()
	_ = sh.Addr()
	if sh.ListenCalls != 1 || sh.ShutdownCalls != 1 {
		t.Fatalf("expected listen/shutdown calls, got %+v", sh)
	}

	b := &BlockingHTTPServer{Unblock: make(chan struct{}), HandlerVal: http.NewServeMux()}
	if err := b.ListenAndServe(); err != nil {
		t.Fatalf("expected nil listen error for blocking server")
	}
	done := make(chan error, 1)
	go func() { done <- b.Shutdown(context.Background()) }()
	close(b.Unblock)
	_ = b.Handler()
	if b.Addr() != b.AddrVal {
		t.Fatalf("expected blocking server addr passthrough")
	}
	if err := <-done; err != nil {
		t.Fatalf("expected nil shutdown err, got %v", err)
	}
	if b.ShutdownCalls != 1 {
		t.Fatalf("expected shutdown called once")
	}

	e := &ErrHTTPServer{}
	_ = e.ListenAndServe()
	_ = e.Shutdown(context.Background())
	_ = e.Handler()
	if e.Addr() == "" {
		t.Fatalf("expected addr from ErrHTTPServer")
	}
	if e.ShutdownCalls != 1 {
		t.Fatalf("expected shutdown call for ErrHTTPServer")
	}

	c := &CloseableHTTPServer{}
	_ = c.ListenAndServe()
	_ = c.Shutdown(context.Background())
	_ = c.Handler()
	if c.Addr() == "" {
		t.Fatalf("expected addr from CloseableHTTPServer")
	}
	if c.ShutdownCalls != 1 {
		t.Fatalf("expected shutdown call for CloseableHTTPServer")
	}

	if !p.Ready() {
		t.Fatalf("expected ready passthrough")
	}
}

func TestLoggerAndMetricsHelpers(t *testing.T) {
	logger, buf := NewBufferLogger()
	logger.Info("hello", "k", "v")
	if buf.Len() == 0 {
		t.Fatalf("expected buffered log output")
	}
	rec, shutdown := NewRecorderWithShutdown()
	if rec == nil || shutdown == nil {
		t.Fatalf("expected recorder and shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected nil shutdown error, got %v", err)
	}
}


func TestAssertErrorBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid user id","requestId":"r1"}`))
	})
	body := AssertErrorBody(t, Serve(handler, http.MethodGet, "/", nil), http.StatusBadRequest)
	if body["requestId"] != "r1" {
		t.Fatalf("expected request id in envelope, got %v", body)
	}
}

func TestFixturesHelper(t *testing.T) {
	item := SampleItem(3, 42, matches.StatusMyTurn)
	if item.MatchID != 3 || item.UserID != 42 || !item.HasPhotos() {
		t.Fatalf("unexpected item fixture %+v", item)
	}
	if !item.DeliveredAt.Before(FixtureTime) {
		t.Fatalf("expected delivery before fixture time, got %v", item.DeliveredAt)
	}
	feed := SampleFeed(42)
	if len(feed) != len(matches.AllStatuses()) {
		t.Fatalf("expected one item per status, got %d", len(feed))
	}
}

func TestGatewayHelpers(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	gw := &StubGateway{
		Items:  SampleFeed(42),
		FailOn: map[matches.StatusGroup]error{matches.GroupComm: boom},
	}

	q := matches.QueryDescriptor{UserID: 42, Group: matches.GroupNew, Statuses: []matches.MatchStatus{matches.StatusNew}}
	set, err := gw.Query(ctx, q)
	if err != nil || set.Len() != 1 {
		t.Fatalf("expected one new match, got %v err %v", set, err)
	}
	q.Group = matches.GroupComm
	if _, err := gw.Query(ctx, q); !errors.Is(err, boom) {
		t.Fatalf("expected group failure, got %v", err)
	}
	if got := len(gw.Queries()); got != 2 {
		t.Fatalf("expected 2 recorded queries, got %d", got)
	}
	if _, ok, err := gw.Get(ctx, 42, 1); err != nil || !ok {
		t.Fatalf("expected match 1, ok=%v err=%v", ok, err)
	}

	errGw := ErrGateway{Err: boom}
	if _, err := errGw.Query(ctx, q); !errors.Is(err, boom) {
		t.Fatalf("expected error passthrough")
	}
	if _, _, err := errGw.Get(ctx, 42, 1); !errors.Is(err, boom) {
		t.Fatalf("expected error passthrough on get")
	}
}

func TestFeedServiceHelper(t *testing.T) {
	svc := NewFeedServiceWithItems(SampleFeed(42)...)
	counts, err := svc.Count(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if counts.Total != len(matches.AllStatuses()) {
		t.Fatalf("expected every sample counted, got %+v", counts)
	}
}
