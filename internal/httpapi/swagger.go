//go:build swagger

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// openAPIDoc is a hand-maintained summary of the routes; handler annotations
// carry the detail for `swag init`.
const openAPIDoc = `{
  "swagger": "2.0",
  "info": {"title": "forge3d API", "version": "1.0", "description": "Local API for text/image-to-3D generation, model history and viewer state."},
  "basePath": "/",
  "schemes": ["http"],
  "paths": {
    "/remote/health": {"get": {"tags": ["remote"], "summary": "Remote service health", "responses": {"200": {"description": "ok"}, "502": {"description": "remote unavailable"}}}},
    "/jobs": {"post": {"tags": ["jobs"], "summary": "Start a generation job", "consumes": ["application/json"], "responses": {"202": {"description": "accepted"}, "400": {"description": "invalid input"}, "409": {"description": "busy"}, "502": {"description": "remote failure"}}}},
    "/jobs/current": {
      "get": {"tags": ["jobs"], "summary": "Current job", "responses": {"200": {"description": "job view"}}},
      "delete": {"tags": ["jobs"], "summary": "Cancel the current job", "responses": {"200": {"description": "canceled"}, "409": {"description": "no job in flight"}}}
    },
    "/jobs/current/reset": {"post": {"tags": ["jobs"], "summary": "Reset a finished job", "responses": {"200": {"description": "idle"}}}},
    "/events": {"get": {"tags": ["jobs"], "summary": "Job event stream", "produces": ["text/event-stream"], "responses": {"200": {"description": "stream"}}}},
    "/history": {
      "get": {"tags": ["history"], "summary": "List history", "responses": {"200": {"description": "entries"}}},
      "delete": {"tags": ["history"], "summary": "Clear history", "responses": {"204": {"description": "cleared"}}}
    },
    "/history/{id}": {
      "patch": {"tags": ["history"], "summary": "Rename an entry", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "entry"}, "404": {"description": "not found"}}},
      "delete": {"tags": ["history"], "summary": "Delete an entry", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "deleted"}, "404": {"description": "not found"}}}
    },
    "/history/import": {"post": {"tags": ["history"], "summary": "Import a local model file", "responses": {"201": {"description": "entry"}, "415": {"description": "unsupported format"}}}},
    "/viewer": {"get": {"tags": ["viewer"], "summary": "Viewer state", "responses": {"200": {"description": "state"}}}},
    "/viewer/load": {"post": {"tags": ["viewer"], "summary": "Load a model", "responses": {"200": {"description": "state"}, "404": {"description": "not found"}}}},
    "/viewer/rotate": {"post": {"tags": ["viewer"], "summary": "Rotate by delta or to an absolute angle", "responses": {"200": {"description": "state"}}}},
    "/viewer/scale": {"post": {"tags": ["viewer"], "summary": "Scale by factor or to an absolute value", "responses": {"200": {"description": "state"}}}},
    "/viewer/reset": {"post": {"tags": ["viewer"], "summary": "Reset transform", "responses": {"200": {"description": "state"}}}}
  }
}`

type staticDoc struct{}

func (staticDoc) ReadDoc() string { return openAPIDoc }

func init() {
	swag.Register(swag.Name, staticDoc{})
}

// MountSwagger serves the UI under /swagger/ and the document at /swagger/doc.json.
func MountSwagger(r chi.Router) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
