package main

// General API documentation for swaggo. Regenerate with `swag init -g cmd/forge3d/docs.go`.
//
// @title           forge3d API
// @version         1.0
// @description     Local HTTP API for text/image to 3D generation jobs, model history and the viewer.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
