package middleware

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"strconv"
	"strings"
)

// AcceptEncodingMiddleware gzips successful responses for clients that ask
// for it. Error responses are passed through uncompressed.
func AcceptEncodingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gzw := newGzipResponseWriter(w)
		defer gzw.Close()
		next.ServeHTTP(gzw, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	writer  *gzip.Writer
	code    int
	codeSet bool
	buffer  bytes.Buffer
}

func newGzipResponseWriter(w http.ResponseWriter) *gzipResponseWriter {
	res := &gzipResponseWriter{
		ResponseWriter: w,
		code:           http.StatusOK,
	}
	res.writer = gzip.NewWriter(&res.buffer)
	return res
}

func (gzw *gzipResponseWriter) WriteHeader(code int) {
	if gzw.codeSet {
		return
	}
	gzw.codeSet = true
	gzw.code = code
	if !gzw.compressed() {
		gzw.ResponseWriter.WriteHeader(code)
	}
}

func (gzw *gzipResponseWriter) compressed() bool {
	return gzw.code/100 == 2
}

func (gzw *gzipResponseWriter) Write(b []byte) (int, error) {
	gzw.codeSet = true
	if gzw.compressed() {
		return gzw.writer.Write(b)
	}
	return gzw.ResponseWriter.Write(b)
}

func (gzw *gzipResponseWriter) Close() {
	if !gzw.compressed() {
		return
	}
	gzw.writer.Close()
	gzw.Header().Set("Content-Encoding", "gzip")
	gzw.Header().Del("Content-Length")
	gzw.Header().Set("Content-Length", strconv.Itoa(gzw.buffer.Len()))
	gzw.ResponseWriter.WriteHeader(gzw.code)
	gzw.ResponseWriter.Write(gzw.buffer.Bytes())
}
