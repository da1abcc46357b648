package installer

import "errors"

const (
	// progID is the handler identifier the mod file types are associated with.
	progID = "MixolumiaModInstaller.install"

	appUserModelID = "Maddymakesgames.MixolumiaModInstaller"

	fileTypeDescription = "Mixolumia mod file"
)

// errRegistrationUnsupported is returned where associations come from outside
// mxinstall, such as the app bundle's Info.plist on macOS.
var errRegistrationUnsupported = errors.New("file type registration not supported on this platform")

// mimeTypes maps each supported extension to the MIME type registered for it.
//
//nolint:gochecknoglobals // lookup table
var mimeTypes = map[string]string{
	ExtMod:     "application/x-mixolumia-mod",
	ExtMusic:   "application/x-mixolumia-music",
	ExtPalette: "application/x-mixolumia-palette",
}
