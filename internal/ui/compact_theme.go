package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/direct-downloader/internal/model"
)

// CompactTheme defines a compact theme for the UI with reduced padding and font sizes
type CompactTheme struct{}

// NewCompactTheme creates a new compact theme
func NewCompactTheme() fyne.Theme {
	return &CompactTheme{}
}

// Color returns theme colors
func (t *CompactTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameSuccess:
		return color.RGBA{R: 46, G: 160, B: 67, A: 255} // ok log lines, done
	case theme.ColorNameError:
		return color.RGBA{R: 220, G: 53, B: 69, A: 255} // bad log lines
	case theme.ColorNameWarning:
		return color.RGBA{R: 230, G: 162, B: 0, A: 255} // warn log lines
	case theme.ColorNamePrimary:
		return color.RGBA{R: 94, G: 92, B: 230, A: 255}
	case theme.ColorNameBackground:
		if variant == theme.VariantDark {
			return color.RGBA{R: 16, G: 17, B: 24, A: 255}
		}
		return color.RGBA{R: 248, G: 248, B: 252, A: 255}
	case theme.ColorNameForeground:
		if variant == theme.VariantDark {
			return color.RGBA{R: 235, G: 235, B: 245, A: 255}
		}
		return color.RGBA{R: 33, G: 33, B: 40, A: 255}
	}

	return theme.DefaultTheme().Color(name, variant)
}

// Font returns theme fonts
func (t *CompactTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns theme icons
func (t *CompactTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size returns theme sizes with compact adjustments
func (t *CompactTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameLineSpacing:
		return 2
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameText:
		return 13
	case theme.SizeNameHeadingText:
		return 16
	case theme.SizeNameSubHeadingText:
		return 14
	case theme.SizeNameCaptionText:
		return 10
	case theme.SizeNameInputRadius:
		return 3
	case theme.SizeNameSelectionRadius:
		return 2
	}

	return theme.DefaultTheme().Size(name)
}

// severityImportance maps a log severity onto the label importance, which
// picks the success/warning/error colors above
func severityImportance(severity model.Severity) widget.Importance {
	switch severity {
	case model.SeverityOK:
		return widget.SuccessImportance
	case model.SeverityWarn:
		return widget.WarningImportance
	case model.SeverityBad:
		return widget.DangerImportance
	default:
		return widget.MediumImportance
	}
}

// withMinSize stacks obj over a transparent spacer so it never shrinks below
// width x height. A zero dimension keeps obj's own minimum.
func withMinSize(obj fyne.CanvasObject, width, height float32) *fyne.Container {
	spacer := canvas.NewRectangle(color.Transparent)
	spacer.SetMinSize(fyne.NewSize(width, height))
	return container.NewStack(spacer, obj)
}
