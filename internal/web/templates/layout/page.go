package layout

import "github.com/mcoot/whamageddon/internal/model"

// FlashMessage is a one-shot notice shown at the top of the next page
type FlashMessage struct {
	Type    string // success, error, info
	Message string
}

// PageData holds the data shared by every page
type PageData struct {
	Title  string
	UserID model.UserID
	Flash  *FlashMessage
}

func pageTitle(title string) string {
	if title == "" {
		return "Whamageddon"
	}
	return title + " - Whamageddon"
}
