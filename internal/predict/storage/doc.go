// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

// Package storage persists trained models across restarts.
//
// # Storage Format
//
// Every saved version is written as three artifacts in the base directory:
//
//	{name}_v{n}.model.gob.gz   gzip-compressed gob of the fitted forest
//	{name}_v{n}.columns.json   feature column order and batch statistics
//	{name}_v{n}.meta.json      training configuration, metrics, importances, checksum
//
// The SHA-256 checksum of the uncompressed gob is recorded in the metadata and
// verified on load. Artifacts are written to temporary files and renamed into
// place; the metadata file is renamed last, so a version is only visible once
// all three artifacts exist.
//
// # Versioning
//
// Versions are monotonically increasing integers per model name. Load with
// version 0 returns the latest version. Prune keeps the newest N versions.
//
// # Usage Example
//
//	store, err := storage.NewStore("/data/models")
//	if err != nil {
//	    return err
//	}
//
//	meta, err := store.Save(ctx, trained)
//	...
//	model, meta, err := store.Load(ctx, "event_success_v2", 0)
//
// # Thread Safety
//
// All operations are safe for concurrent use.
package storage
