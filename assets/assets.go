package assets

import (
	"embed"

	"fyne.io/fyne/v2"
)

//go:embed checklist.svg
var assetsFS embed.FS

// GetAppIcon returns the application and tray icon, or nil if the embedded
// file is missing.
func GetAppIcon() fyne.Resource {
	data, err := assetsFS.ReadFile("checklist.svg")
	if err != nil {
		return nil
	}
	return fyne.NewStaticResource("checklist.svg", data)
}
