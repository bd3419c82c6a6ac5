// Package site serves the embedded dashboard front end.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded dashboard at / on mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
