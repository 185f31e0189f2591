package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/preston-bernstein/match-feed-service/internal/store"
	"github.com/preston-bernstein/match-feed-service/internal/testutil"
)

func BenchmarkMatches(b *testing.B) {
	svc := testutil.NewFeedServiceWithItems(store.FixtureItems(time.Now())...)
	h := NewHandler(svc, nil, nil)
	vars := map[string]string{VarUserID: "42", VarMatrix: ";status=all;locale=en_US"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/?pageSize=3", nil), vars)
		rr := httptest.NewRecorder()
		h.Matches(rr, req)
	}
}

func BenchmarkTeaser(b *testing.B) {
	svc := testutil.NewFeedServiceWithItems(store.FixtureItems(time.Now())...)
	h := NewHandler(svc, nil, nil)
	vars := map[string]string{VarUserID: "42", VarMatrix: ";status=new,comm"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), vars)
		rr := httptest.NewRecorder()
		h.Teaser(rr, req)
	}
}
