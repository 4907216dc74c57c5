package archive

import (
	"fmt"

	"github.com/arloliu/alembic/section"
)

// Build stamps reported in the _ai_AlembicVersion metadata value. Set them
// with -ldflags "-X github.com/arloliu/alembic/archive.BuildDate=...".
var (
	BuildDate = "unknown"
	BuildTime = "unknown"
)

// DefaultLibraryVersion is the library version written into new archives.
const DefaultLibraryVersion = section.LibraryVersion

// Archive metadata keys.
const (
	KeyAlembicVersion = "_ai_AlembicVersion"
	KeyApplication    = "_ai_Application"
	KeyDateWritten    = "_ai_DateWritten"
	KeyDescription    = "_ai_Description"
	KeyDCCFPS         = "_ai_DCC_FPS"
	KeyCompression    = "_ai_Compression"
)

// FormatLibraryVersion renders a library version such as 10810 the way it
// appears in archive metadata: "Alembic 1.8.10 (built <date> <time>)".
func FormatLibraryVersion(version int32) string {
	major := version / 10000
	minor := (version / 100) % 100
	patch := version % 100

	return fmt.Sprintf("Alembic %d.%d.%d (built %s %s)", major, minor, patch, BuildDate, BuildTime)
}
