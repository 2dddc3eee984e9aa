package main

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const serverTestBank = `{
  "title": "Operating Systems",
  "units": [
    {
      "title": "Memory Management",
      "questions": [
        {"text": "Explain paging."}
      ]
    }
  ]
}`

// uploadBank posts a snapshot through the multipart upload endpoint and
// fails the test unless the server accepts it.
func uploadBank(t *testing.T, ts *httptest.Server, content string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "bank.json")
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("writing multipart content failed: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}

	resp, err := http.Post(ts.URL+"/api/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST /api/upload failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestRouterHealthCheck(t *testing.T) {
	app := newTestApplication(t)
	ts := httptest.NewServer(app.setupRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading health body failed: %v", err)
	}
	if string(body) != "OK" {
		t.Errorf("health body = %q, want %q", body, "OK")
	}
}

func TestRouterDownloadBeforeAnyRun(t *testing.T) {
	app := newTestApplication(t)
	ts := httptest.NewServer(app.setupRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/download")
	if err != nil {
		t.Fatalf("GET /api/download failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("download status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding download error body failed: %v", err)
	}
	want := "Output file not found. Process may not be complete."
	if payload.Error != want {
		t.Errorf("download error = %q, want %q", payload.Error, want)
	}
}

func TestRouterStopHaltsServer(t *testing.T) {
	app := newTestApplication(t)
	ts := httptest.NewServer(app.setupRouter())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/stop", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/stop failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("stop status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding stop body failed: %v", err)
	}
	if payload.Message != "Backend server is halting completely." {
		t.Errorf("stop message = %q", payload.Message)
	}

	if !app.stop.IsSet() {
		t.Error("stop flag not raised by stop request")
	}

	// The halt hook fires shortly after the response is written.
	select {
	case <-app.halt:
	case <-time.After(2 * time.Second):
		t.Fatal("halt channel not closed after stop request")
	}
}

// TestRouterProcessEndToEnd drives upload, the full processing stream,
// and download against a wired application. With no provider keys
// configured both enrichment steps fail immediately, so the run passes
// the bank through unchanged but still writes the output snapshot.
func TestRouterProcessEndToEnd(t *testing.T) {
	app := newTestApplication(t)
	ts := httptest.NewServer(app.setupRouter())
	defer ts.Close()

	uploadBank(t, ts, serverTestBank)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(ts.URL + "/api/process")
	if err != nil {
		t.Fatalf("GET /api/process failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("process status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("process Content-Type = %q, want %q", ct, "text/event-stream")
	}

	// The body stays open until the run finishes and the stream closes.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading process stream failed: %v", err)
	}
	stream := string(body)

	for _, want := range []string{
		"Connected to server stream...",
		"Failed to generate query.",
		"Failed to generate solution.",
		"PROCESSING COMPLETE!",
		`data: {"message":"[DONE]"}`,
	} {
		if !strings.Contains(stream, want) {
			t.Errorf("stream missing %q", want)
		}
	}

	dl, err := http.Get(ts.URL + "/api/download")
	if err != nil {
		t.Fatalf("GET /api/download failed: %v", err)
	}
	defer func() { _ = dl.Body.Close() }()

	if dl.StatusCode != http.StatusOK {
		t.Fatalf("download after run status = %d, want %d", dl.StatusCode, http.StatusOK)
	}
	if cd := dl.Header.Get("Content-Disposition"); !strings.Contains(cd, "processed_output.json") {
		t.Errorf("download Content-Disposition = %q", cd)
	}

	var bank struct {
		Title string `json:"title"`
		Units []struct {
			Title     string `json:"title"`
			Questions []struct {
				Text string `json:"text"`
			} `json:"questions"`
		} `json:"units"`
	}
	if err := json.NewDecoder(dl.Body).Decode(&bank); err != nil {
		t.Fatalf("decoding downloaded snapshot failed: %v", err)
	}
	if bank.Title != "Operating Systems" {
		t.Errorf("downloaded title = %q", bank.Title)
	}
	if len(bank.Units) != 1 || len(bank.Units[0].Questions) != 1 {
		t.Fatalf("downloaded snapshot shape unexpected: %+v", bank)
	}
	if bank.Units[0].Questions[0].Text != "Explain paging." {
		t.Errorf("downloaded question = %q", bank.Units[0].Questions[0].Text)
	}
}
