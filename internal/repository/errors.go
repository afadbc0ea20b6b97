// Package repository defines the error kinds shared by the record store, the
// dataset operations and the upload path.  Handlers use errors.Is against
// these sentinels to pick a response status: ErrNotFound and
// ErrInvalidCredentials are client errors, the rest are server errors.
// Wrapped messages name the failed resource (booking id, username) but never
// include file system paths.
package repository

import "errors"

// ErrNotFound is returned when a booking or user identifier does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is returned when no user matches a username and
// password pair.  Handlers should translate this into an HTTP 401 response.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrStorageUnavailable is returned when the data file or the scratch
// directory is missing.  The store never recreates it on its own.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrCorruptData is returned when the data file cannot be parsed.
var ErrCorruptData = errors.New("corrupt data")

// ErrUploadFailed is returned when streaming an upload to scratch storage
// fails part way.  The partial file is removed before the error surfaces.
var ErrUploadFailed = errors.New("upload failed")
