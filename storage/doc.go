// Package storage provides the working directory where incoming videos are
// kept for the duration of a single transcription.
//
// Backends register themselves through RegisterFactory; the local
// filesystem backend lives in storage/local and is the only one shipped.
//
//	storage:
//	  provider: "local"
//	  base_path: "uploads"
package storage
