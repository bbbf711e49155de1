// Package models holds the record types shared by every pipeline stage.
//
// A [Track] with LocalPath set implies the referenced audio file exists and
// is decodable. A Track without LocalPath has never been successfully
// downloaded. The failure list is a strict subset, by (track_name, artist)
// identity, of the tracks still awaiting a successful download.
package models
