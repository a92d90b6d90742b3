// Package detect implements content-based type detection. Files are typed
// by matching a bounded byte prefix against known content signatures; the
// declared extension is only a fallback and a cross-check, never trusted.
package detect

import (
	"bytes"
	"path/filepath"
	"strings"

	"vaultorg/internal/organize"
)

// prefixSize bounds how much of a file detection may read. It must stay
// small: detection runs on multi-gigabyte video files.
const prefixSize = 4096

// signature is a byte pattern at a fixed offset identifying a content type.
type signature struct {
	offset  int
	pattern []byte
	mime    string
	group   string // extractor group routed to on match
}

// Signatures are checked in order; more specific patterns come before the
// generic ones they would otherwise shadow (CR2 before plain TIFF, WEBP
// and WAV before generic RIFF handling).
var signatures = []signature{
	{0, []byte{0xFF, 0xD8, 0xFF}, "image/jpeg", "image"},
	{0, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, "image/png", "image"},
	{0, []byte("GIF87a"), "image/gif", "image"},
	{0, []byte("GIF89a"), "image/gif", "image"},
	{0, []byte{'I', 'I', 0x2A, 0x00, 0x10, 0x00, 0x00, 0x00, 'C', 'R'}, "image/x-canon-cr2", "image"},
	{0, []byte{'I', 'I', 0x2A, 0x00}, "image/tiff", "image"},
	{0, []byte{'M', 'M', 0x00, 0x2A}, "image/tiff", "image"},
	{0, []byte("BM"), "image/bmp", "image"},
	{8, []byte("WEBP"), "image/webp", "image"},
	{0, []byte("%PDF-"), "application/pdf", "document"},
	{0, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, "application/msword", "document"},
	{0, []byte("PK\x03\x04"), "application/zip", "archive"},
	{0, []byte{0x1F, 0x8B}, "application/gzip", "archive"},
	{0, []byte("7z\xBC\xAF\x27\x1C"), "application/x-7z-compressed", "archive"},
	{0, []byte("Rar!\x1A\x07"), "application/x-rar-compressed", "archive"},
	{8, []byte("WAVE"), "audio/wav", "audio"},
	{8, []byte("AVI "), "video/x-msvideo", "video"},
	{0, []byte("ID3"), "audio/mpeg", "audio"},
	{0, []byte("fLaC"), "audio/flac", "audio"},
	{0, []byte("OggS"), "audio/ogg", "audio"},
	{0, []byte{0x1A, 0x45, 0xDF, 0xA3}, "video/x-matroska", "video"},
}

// defaultExtensionMIME is the extension fallback table consulted when no
// content signature matches. Keys are lowercase extensions without the dot.
var defaultExtensionMIME = map[string]string{
	"jpg": "image/jpeg", "jpeg": "image/jpeg", "png": "image/png",
	"gif": "image/gif", "bmp": "image/bmp", "webp": "image/webp",
	"tif": "image/tiff", "tiff": "image/tiff", "heic": "image/heic",
	"cr2": "image/x-canon-cr2", "nef": "image/x-nikon-nef", "arw": "image/x-sony-arw",
	"dng": "image/x-adobe-dng",
	"pdf": "application/pdf", "txt": "text/plain", "md": "text/markdown",
	"doc": "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls": "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt": "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"epub": "application/epub+zip",
	"zip": "application/zip", "gz": "application/gzip", "tar": "application/x-tar",
	"7z": "application/x-7z-compressed", "rar": "application/x-rar-compressed",
	"iso": "application/x-iso9660-image",
	"mp4": "video/mp4", "mov": "video/quicktime", "mkv": "video/x-matroska",
	"avi": "video/x-msvideo", "webm": "video/webm",
	"mp3": "audio/mpeg", "flac": "audio/flac", "ogg": "audio/ogg",
	"wav": "audio/wav", "m4a": "audio/mp4", "aac": "audio/aac",
}

// mimeGroups routes MIME prefixes to extractor groups for types resolved
// via the extension fallback (signature matches carry their own group).
var mimeGroups = []struct {
	prefix string
	group  string
}{
	{"image/", "image"},
	{"video/", "video"},
	{"audio/", "audio"},
	{"application/pdf", "document"},
	{"application/vnd.", "document"},
	{"application/msword", "document"},
	{"application/epub", "document"},
	{"text/", "document"},
}

// Router determines content MIME types from byte prefixes, validating the
// declared extension against the detected type. Extension overrides from
// configuration extend the built-in fallback table.
type Router struct {
	extensionMIME map[string]string

	// Reverse of extensionMIME for the advisory mismatch check. Built from
	// the merged table so configured extensions are conventional for the
	// MIME they declare.
	mimeExtensions map[string][]string
}

// NewRouter creates a Router. overrides maps lowercase extensions (without
// dot) to MIME types and takes precedence over the built-in table.
func NewRouter(overrides map[string]string) *Router {
	table := make(map[string]string, len(defaultExtensionMIME)+len(overrides))
	for ext, mime := range defaultExtensionMIME {
		table[ext] = mime
	}
	for ext, mime := range overrides {
		table[strings.ToLower(strings.TrimPrefix(ext, "."))] = mime
	}

	reverse := make(map[string][]string, len(table))
	for ext, mime := range table {
		reverse[mime] = append(reverse[mime], ext)
	}
	return &Router{extensionMIME: table, mimeExtensions: reverse}
}

// PrefixSize returns the maximum number of leading bytes Detect inspects.
func (r *Router) PrefixSize() int { return prefixSize }

// Detect types the file from its prefix bytes, falling back to the
// extension table when no signature matches. The extension-mismatch flag
// is advisory: it never blocks processing.
func (r *Router) Detect(prefix []byte, filename string) organize.DetectedType {
	ext := normalizeExt(filename)

	if mime, group, ok := matchSignature(prefix); ok {
		return organize.DetectedType{
			MIME:              mime,
			Extension:         ext,
			Method:            organize.MethodContentSignature,
			ExtensionMismatch: ext != "" && !r.extensionMatches(mime, ext),
			ExtractorGroup:    group,
		}
	}

	if looksLikeMP4(prefix) {
		mime := "video/mp4"
		if bytes.Contains(prefix[:min(len(prefix), 16)], []byte("qt  ")) {
			mime = "video/quicktime"
		}
		return organize.DetectedType{
			MIME:              mime,
			Extension:         ext,
			Method:            organize.MethodHeaderInspection,
			ExtensionMismatch: ext != "" && !r.extensionMatches(mime, ext),
			ExtractorGroup:    "video",
		}
	}

	if mime, ok := r.extensionMIME[ext]; ok {
		return organize.DetectedType{
			MIME:           mime,
			Extension:      ext,
			Method:         organize.MethodExtensionFallback,
			ExtractorGroup: groupForMIME(mime),
		}
	}

	return organize.DetectedType{
		MIME:      "application/octet-stream",
		Extension: ext,
		Method:    organize.MethodUnknown,
	}
}

func matchSignature(prefix []byte) (mime, group string, ok bool) {
	for _, sig := range signatures {
		end := sig.offset + len(sig.pattern)
		if len(prefix) < end {
			continue
		}
		if bytes.Equal(prefix[sig.offset:end], sig.pattern) {
			return sig.mime, sig.group, true
		}
	}
	return "", "", false
}

// looksLikeMP4 checks for the ISO base media "ftyp" box at offset 4.
func looksLikeMP4(prefix []byte) bool {
	return len(prefix) >= 8 && bytes.Equal(prefix[4:8], []byte("ftyp"))
}

// extensionMatches reports whether ext is conventional for mime.
func (r *Router) extensionMatches(mime, ext string) bool {
	for _, e := range r.mimeExtensions[mime] {
		if e == ext {
			return true
		}
	}
	return false
}

func groupForMIME(mime string) string {
	for _, g := range mimeGroups {
		if strings.HasPrefix(mime, g.prefix) {
			return g.group
		}
	}
	if strings.HasPrefix(mime, "application/") && isArchiveMIME(mime) {
		return "archive"
	}
	return ""
}

// isArchiveMIME reports whether mime is one of the archive container types.
func isArchiveMIME(mime string) bool {
	switch mime {
	case "application/zip", "application/gzip", "application/x-tar",
		"application/x-7z-compressed", "application/x-rar-compressed",
		"application/x-iso9660-image":
		return true
	}
	return false
}

func normalizeExt(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

var _ organize.TypeDetector = (*Router)(nil)
