package detect

import (
	"testing"

	"vaultorg/internal/organize"
)

func TestDetect_Signatures(t *testing.T) {
	tests := []struct {
		name      string
		prefix    []byte
		filename  string
		wantMIME  string
		wantGroup string
	}{
		{
			name:      "jpeg",
			prefix:    []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'},
			filename:  "photo.jpg",
			wantMIME:  "image/jpeg",
			wantGroup: "image",
		},
		{
			name:      "png",
			prefix:    []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0},
			filename:  "shot.png",
			wantMIME:  "image/png",
			wantGroup: "image",
		},
		{
			name:      "canon cr2 wins over plain tiff",
			prefix:    []byte{'I', 'I', 0x2A, 0x00, 0x10, 0x00, 0x00, 0x00, 'C', 'R', 0x02, 0x00},
			filename:  "img_0001.cr2",
			wantMIME:  "image/x-canon-cr2",
			wantGroup: "image",
		},
		{
			name:      "little endian tiff",
			prefix:    []byte{'I', 'I', 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00},
			filename:  "scan.tif",
			wantMIME:  "image/tiff",
			wantGroup: "image",
		},
		{
			name:      "pdf",
			prefix:    []byte("%PDF-1.7\n"),
			filename:  "report.pdf",
			wantMIME:  "application/pdf",
			wantGroup: "document",
		},
		{
			name:      "zip",
			prefix:    []byte("PK\x03\x04\x14\x00"),
			filename:  "bundle.zip",
			wantMIME:  "application/zip",
			wantGroup: "archive",
		},
		{
			name:      "webp at offset 8",
			prefix:    []byte("RIFF\x24\x00\x00\x00WEBPVP8 "),
			filename:  "sticker.webp",
			wantMIME:  "image/webp",
			wantGroup: "image",
		},
		{
			name:      "wav at offset 8",
			prefix:    []byte("RIFF\x24\x00\x00\x00WAVEfmt "),
			filename:  "clip.wav",
			wantMIME:  "audio/wav",
			wantGroup: "audio",
		},
		{
			name:      "flac",
			prefix:    []byte("fLaC\x00\x00\x00\x22"),
			filename:  "track.flac",
			wantMIME:  "audio/flac",
			wantGroup: "audio",
		},
		{
			name:      "matroska",
			prefix:    []byte{0x1A, 0x45, 0xDF, 0xA3, 0x01},
			filename:  "movie.mkv",
			wantMIME:  "video/x-matroska",
			wantGroup: "video",
		},
	}

	r := NewRouter(nil)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := r.Detect(tt.prefix, tt.filename)
			if got.MIME != tt.wantMIME {
				t.Errorf("MIME = %q, want %q", got.MIME, tt.wantMIME)
			}
			if got.Method != organize.MethodContentSignature {
				t.Errorf("Method = %q, want %q", got.Method, organize.MethodContentSignature)
			}
			if got.ExtractorGroup != tt.wantGroup {
				t.Errorf("ExtractorGroup = %q, want %q", got.ExtractorGroup, tt.wantGroup)
			}
			if got.ExtensionMismatch {
				t.Error("ExtensionMismatch = true for conventional extension")
			}
		})
	}
}

func TestDetect_ExtensionMismatchIsAdvisory(t *testing.T) {
	r := NewRouter(nil)

	// JPEG bytes behind a .png name: content wins, mismatch flagged.
	got := r.Detect([]byte{0xFF, 0xD8, 0xFF, 0xE1}, "renamed.png")
	if got.MIME != "image/jpeg" {
		t.Errorf("MIME = %q, want image/jpeg", got.MIME)
	}
	if !got.ExtensionMismatch {
		t.Error("ExtensionMismatch = false, want true")
	}

	// No extension at all: nothing to disagree with.
	got = r.Detect([]byte{0xFF, 0xD8, 0xFF, 0xE1}, "noext")
	if got.ExtensionMismatch {
		t.Error("ExtensionMismatch = true for extensionless file")
	}
}

func TestDetect_MP4HeaderInspection(t *testing.T) {
	r := NewRouter(nil)

	t.Run("mp4 ftyp box", func(t *testing.T) {
		prefix := []byte{0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}
		got := r.Detect(prefix, "video.mp4")
		if got.MIME != "video/mp4" {
			t.Errorf("MIME = %q, want video/mp4", got.MIME)
		}
		if got.Method != organize.MethodHeaderInspection {
			t.Errorf("Method = %q, want %q", got.Method, organize.MethodHeaderInspection)
		}
		if got.ExtractorGroup != "video" {
			t.Errorf("ExtractorGroup = %q, want video", got.ExtractorGroup)
		}
	})

	t.Run("quicktime brand", func(t *testing.T) {
		prefix := []byte{0x00, 0x00, 0x00, 0x14, 'f', 't', 'y', 'p', 'q', 't', ' ', ' '}
		got := r.Detect(prefix, "clip.mov")
		if got.MIME != "video/quicktime" {
			t.Errorf("MIME = %q, want video/quicktime", got.MIME)
		}
	})
}

func TestDetect_ExtensionFallback(t *testing.T) {
	r := NewRouter(nil)

	got := r.Detect([]byte("just some plain text"), "notes.txt")
	if got.MIME != "text/plain" {
		t.Errorf("MIME = %q, want text/plain", got.MIME)
	}
	if got.Method != organize.MethodExtensionFallback {
		t.Errorf("Method = %q, want %q", got.Method, organize.MethodExtensionFallback)
	}
	if got.ExtractorGroup != "document" {
		t.Errorf("ExtractorGroup = %q, want document", got.ExtractorGroup)
	}
	if got.ExtensionMismatch {
		t.Error("fallback detection should never flag a mismatch")
	}
}

func TestDetect_Unknown(t *testing.T) {
	r := NewRouter(nil)

	got := r.Detect([]byte{0x00, 0x01, 0x02}, "mystery.xyz")
	if got.MIME != "application/octet-stream" {
		t.Errorf("MIME = %q, want application/octet-stream", got.MIME)
	}
	if got.Method != organize.MethodUnknown {
		t.Errorf("Method = %q, want %q", got.Method, organize.MethodUnknown)
	}
}

func TestDetect_EmptyAndTinyFiles(t *testing.T) {
	r := NewRouter(nil)

	// Empty prefix must not panic and falls through to the extension.
	got := r.Detect(nil, "empty.pdf")
	if got.MIME != "application/pdf" {
		t.Errorf("MIME = %q, want application/pdf", got.MIME)
	}
	if got.Method != organize.MethodExtensionFallback {
		t.Errorf("Method = %q, want %q", got.Method, organize.MethodExtensionFallback)
	}

	// Prefix shorter than every signature.
	got = r.Detect([]byte{0xFF}, "tiny")
	if got.Method != organize.MethodUnknown {
		t.Errorf("Method = %q, want %q", got.Method, organize.MethodUnknown)
	}
}

func TestNewRouter_Overrides(t *testing.T) {
	r := NewRouter(map[string]string{".xyz": "application/x-custom", "RAF": "image/x-fuji-raf"})

	got := r.Detect([]byte("opaque"), "data.xyz")
	if got.MIME != "application/x-custom" {
		t.Errorf("MIME = %q, want application/x-custom", got.MIME)
	}

	got = r.Detect([]byte("opaque"), "shot.RAF")
	if got.MIME != "image/x-fuji-raf" {
		t.Errorf("MIME = %q, want image/x-fuji-raf", got.MIME)
	}
}

// A configured extension is conventional for the MIME it declares, so a
// signature-detected file carrying it must not be flagged as a mismatch.
func TestNewRouter_OverrideExtensionNotMismatched(t *testing.T) {
	r := NewRouter(map[string]string{"jfif": "image/jpeg"})

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	got := r.Detect(jpeg, "photo.jfif")
	if got.MIME != "image/jpeg" {
		t.Fatalf("MIME = %q, want image/jpeg", got.MIME)
	}
	if got.ExtensionMismatch {
		t.Error("ExtensionMismatch = true for a configured extension")
	}

	// An unrelated extension still trips the advisory flag.
	got = r.Detect(jpeg, "photo.png")
	if !got.ExtensionMismatch {
		t.Error("ExtensionMismatch = false for a conflicting extension")
	}
}

func TestPrefixSize(t *testing.T) {
	r := NewRouter(nil)
	if r.PrefixSize() != 4096 {
		t.Errorf("PrefixSize() = %d, want 4096", r.PrefixSize())
	}
}
