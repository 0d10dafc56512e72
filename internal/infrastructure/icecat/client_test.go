package icecat

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"icecatimport/internal/domain/importrun"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestFetchReturnsBodyAndSetsHeaders(t *testing.T) {
	var gotUA, gotRequestID, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get(requestIDHeader)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"msg":"OK"}`))
	}))
	defer server.Close()

	client := NewClient(Options{UserAgent: "test-agent", RequestsPerSecond: 100})
	body, err := client.Fetch(context.Background(), server.URL+"?UserName=u&Language=EN&GTIN=1")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body != `{"msg":"OK"}` {
		t.Fatalf("Fetch() body = %q", body)
	}
	if gotUA != "test-agent" {
		t.Fatalf("User-Agent = %q", gotUA)
	}
	if gotRequestID == "" {
		t.Fatalf("request id header missing")
	}
	if gotQuery != "UserName=u&Language=EN&GTIN=1" {
		t.Fatalf("query = %q", gotQuery)
	}
}

func TestFetchKeepsErrorStatusBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":4}`))
	}))
	defer server.Close()

	body, err := NewClient(Options{}).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got := importrun.Classify(body, "EN"); got.Kind != importrun.EnrichmentNotFound {
		t.Fatalf("Classify(%q) = %q, want not found", body, got.Kind)
	}
}

func TestFetchReportsHostFailureInBand(t *testing.T) {
	client := NewClient(Options{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, &net.DNSError{Err: "no such host", Name: "live.icecat.biz", IsNotFound: true}
		}),
	}})

	body, err := client.Fetch(context.Background(), "https://live.icecat.biz/api?GTIN=1")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got := importrun.Classify(body, "EN"); got.Kind != importrun.EnrichmentNetworkUnreachable {
		t.Fatalf("Classify(%q) = %q, want network unreachable", body, got.Kind)
	}
}

func TestFetchReturnsTransportErrors(t *testing.T) {
	client := NewClient(Options{HTTPClient: &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, net.ErrClosed
		}),
	}})

	if _, err := client.Fetch(context.Background(), "https://live.icecat.biz/api"); err == nil {
		t.Fatalf("Fetch() expected transport error")
	}
}
