// Package pifmeta provides typed accessors for the common keys of PIF
// metadata.
//
// PIF metadata is a free-form JSON object. This package gives the keys
// written by the pif tool, and a few widely useful ones, a discoverable
// API without adding fields to pif.Metadata. All functions operate on
// pif.Metadata; setters require a non-nil map.
//
// Example usage:
//
//	meta := pif.Metadata{}
//	pifmeta.Stamp(meta, "photo.png", time.Now())
//	pifmeta.SetOwner(meta, "Studio XYZ")
package pifmeta

import (
	"time"

	"github.com/mrjoshuak/go-pif/pif"
)

// Standard keys
const (
	// Provenance, written by the pif tool on encode
	KeySourceFile   = "source_file"
	KeyCreationDate = "creation_date"

	// Production metadata
	KeyOwner    = "owner"
	KeyComments = "comments"
	KeySoftware = "software"

	// Camera identification
	KeyCameraMake  = "camera_make"
	KeyCameraModel = "camera_model"

	// Geolocation
	KeyLatitude  = "latitude"
	KeyLongitude = "longitude"
	KeyAltitude  = "altitude"
)

// CreationDateLayout is the UTC timestamp format of KeyCreationDate.
const CreationDateLayout = "2006-01-02T15:04:05Z"

// ===========================================
// Provenance
// ===========================================

// Stamp records where and when an image was encoded.
func Stamp(m pif.Metadata, sourceFile string, now time.Time) {
	SetSourceFile(m, sourceFile)
	SetCreationDate(m, now)
}

// SetSourceFile sets the path of the file the image was encoded from.
func SetSourceFile(m pif.Metadata, path string) {
	m[KeySourceFile] = path
}

// SourceFile returns the source file path, or "" if not set.
func SourceFile(m pif.Metadata) string {
	return stringValue(m, KeySourceFile)
}

// SetCreationDate stores t in UTC with second precision.
func SetCreationDate(m pif.Metadata, t time.Time) {
	m[KeyCreationDate] = t.UTC().Format(CreationDateLayout)
}

// CreationDate returns the creation date.
// Returns the zero time and false if it is missing or malformed.
func CreationDate(m pif.Metadata) (time.Time, bool) {
	s := stringValue(m, KeyCreationDate)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(CreationDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ===========================================
// Production Metadata
// ===========================================

// SetOwner sets the owner of the image.
func SetOwner(m pif.Metadata, owner string) {
	m[KeyOwner] = owner
}

// Owner returns the owner of the image.
func Owner(m pif.Metadata) string {
	return stringValue(m, KeyOwner)
}

// SetComments sets free-form comments.
func SetComments(m pif.Metadata, comments string) {
	m[KeyComments] = comments
}

// Comments returns the comments.
func Comments(m pif.Metadata) string {
	return stringValue(m, KeyComments)
}

// SetSoftware sets the name of the program that produced the image.
func SetSoftware(m pif.Metadata, software string) {
	m[KeySoftware] = software
}

// Software returns the producing program.
func Software(m pif.Metadata) string {
	return stringValue(m, KeySoftware)
}

// ===========================================
// Camera Identification
// ===========================================

// CameraInfo identifies the camera that captured the image.
type CameraInfo struct {
	Make  string
	Model string
}

// SetCameraInfo sets the non-empty camera fields.
func SetCameraInfo(m pif.Metadata, info CameraInfo) {
	if info.Make != "" {
		m[KeyCameraMake] = info.Make
	}
	if info.Model != "" {
		m[KeyCameraModel] = info.Model
	}
}

// GetCameraInfo returns the camera fields that are set.
func GetCameraInfo(m pif.Metadata) CameraInfo {
	return CameraInfo{
		Make:  stringValue(m, KeyCameraMake),
		Model: stringValue(m, KeyCameraModel),
	}
}

// ===========================================
// Geolocation
// ===========================================

// GeoLocation is a WGS 84 position.
type GeoLocation struct {
	Latitude  float64 // degrees, positive north
	Longitude float64 // degrees, positive east
	Altitude  float64 // meters above sea level
}

// SetGeoLocation sets latitude, longitude and altitude.
func SetGeoLocation(m pif.Metadata, loc GeoLocation) {
	m[KeyLatitude] = loc.Latitude
	m[KeyLongitude] = loc.Longitude
	m[KeyAltitude] = loc.Altitude
}

// GetGeoLocation returns the location, or nil if latitude or longitude is
// missing. A missing altitude reads as 0.
func GetGeoLocation(m pif.Metadata) *GeoLocation {
	lat, ok1 := numberValue(m, KeyLatitude)
	lon, ok2 := numberValue(m, KeyLongitude)
	if !ok1 || !ok2 {
		return nil
	}
	alt, _ := numberValue(m, KeyAltitude)
	return &GeoLocation{Latitude: lat, Longitude: lon, Altitude: alt}
}

func stringValue(m pif.Metadata, key string) string {
	s, _ := m[key].(string)
	return s
}

// numberValue accepts float64 (what JSON decoding yields) as well as the
// numeric types a caller may have stored before encoding.
func numberValue(m pif.Metadata, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
