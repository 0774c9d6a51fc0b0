// Package models defines domain entities and persistence interfaces for streamcatch.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs decoded from captured requests
//   - [Stream] : Media URL, MIME type and request headers sent by the browser extension
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Capture] : One capture run, successful or not, with the decoded stream and the raw body
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
