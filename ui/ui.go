// Package ui holds the watch face page/dialog state machine and the
// renderer that projects it onto the panel.
package ui

// Page is a top-level screen.
type Page uint8

const (
	PageMain Page = iota
	PageSettings
	PageGallery
	PageInfo
)

func (p Page) String() string {
	switch p {
	case PageMain:
		return "main"
	case PageSettings:
		return "settings"
	case PageGallery:
		return "gallery"
	case PageInfo:
		return "info"
	}
	return "unknown"
}

// Dialog is a modal overlay on top of a page.
type Dialog uint8

const (
	DialogNone Dialog = iota
	DialogHome
	DialogStart
	DialogAbout
	DialogVolume
	DialogBrightness
	DialogReset
	DialogTransform
)

// Menu item indexes.
const (
	MainHome = iota
	MainStart
	MainAbout
)

const (
	SettingsVolume = iota
	SettingsBrightness
	SettingsReset
)

// GalleryImages is the number of selectable full-frame images.
const GalleryImages = 10

// State is the complete UI state. The zero value is the main menu with the
// first item highlighted. Navigation methods are pure; callers store the
// returned state.
type State struct {
	Page   Page
	Item   int
	Dialog Dialog
}

func (s State) items() int {
	switch s.Page {
	case PageMain, PageSettings:
		return 3
	case PageGallery:
		return GalleryImages
	}
	return 1
}

// NextMenu advances to the next top-level page. Ignored while a dialog is
// open.
func (s State) NextMenu() State {
	if s.Dialog != DialogNone {
		return s
	}
	switch s.Page {
	case PageMain:
		s.Page = PageSettings
	case PageSettings:
		s.Page = PageGallery
	case PageGallery:
		s.Page = PageInfo
	default:
		s.Page = PageMain
	}
	s.Item = 0
	return s
}

// NextItem moves the selection forward within the current page, wrapping
// around. Ignored while a dialog is open.
func (s State) NextItem() State {
	if s.Dialog != DialogNone {
		return s
	}
	s.Item = (s.Item + 1) % s.items()
	return s
}

// PrevItem moves the selection backward within the current page, wrapping
// around. Ignored while a dialog is open.
func (s State) PrevItem() State {
	if s.Dialog != DialogNone {
		return s
	}
	s.Item = (s.Item + s.items() - 1) % s.items()
	return s
}

// Select opens the dialog for the current selection, or closes an open
// dialog. The info page has no dialog.
func (s State) Select() State {
	if s.Dialog != DialogNone {
		s.Dialog = DialogNone
		return s
	}
	switch s.Page {
	case PageMain:
		switch s.Item {
		case MainHome:
			s.Dialog = DialogHome
		case MainStart:
			s.Dialog = DialogStart
		case MainAbout:
			s.Dialog = DialogAbout
		}
	case PageSettings:
		switch s.Item {
		case SettingsVolume:
			s.Dialog = DialogVolume
		case SettingsBrightness:
			s.Dialog = DialogBrightness
		case SettingsReset:
			s.Dialog = DialogReset
		}
	case PageGallery:
		s.Dialog = DialogTransform
	}
	return s
}
