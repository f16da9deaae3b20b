// Package s3test serves a minimal path-style S3 API over plain HTTP, enough
// for PutObject, GetObject, DeleteObject and the bucket check.
package s3test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const noSuchKey = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

type object struct {
	data        []byte
	contentType string
}

// Server is an in-memory bucket store.
type Server struct {
	URL string

	mu      sync.Mutex
	objects map[string]object
}

// Start runs a server for the life of the test.
func Start(t testing.TB) *Server {
	t.Helper()

	s := &Server{objects: make(map[string]object)}

	mux := http.NewServeMux()
	mux.HandleFunc("HEAD /{bucket}", s.bucketOK)
	mux.HandleFunc("PUT /{bucket}", s.bucketOK)
	mux.HandleFunc("PUT /{bucket}/{key...}", s.put)
	mux.HandleFunc("GET /{bucket}/{key...}", s.get)
	mux.HandleFunc("DELETE /{bucket}/{key...}", s.delete)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	s.URL = srv.URL
	return s
}

// Object returns a stored object's bytes and content type.
func (s *Server) Object(bucket, key string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[bucket+"/"+key]
	return obj.data, obj.contentType, ok
}

func (s *Server) bucketOK(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) put(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.objects[r.PathValue("bucket")+"/"+r.PathValue("key")] = object{
		data:        data,
		contentType: r.Header.Get("Content-Type"),
	}
	s.mu.Unlock()

	w.Header().Set("ETag", `"fake-etag"`)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	data, contentType, ok := s.Object(r.PathValue("bucket"), r.PathValue("key"))
	if !ok {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, noSuchKey)
		return
	}

	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.objects, r.PathValue("bucket")+"/"+r.PathValue("key"))
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}
