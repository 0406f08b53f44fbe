package handlers

import (
	"strconv"
	"strings"

	"photoshare/internal/services"
)

const maxPageLimit = 200

// parsePage reads limit and offset. A missing or invalid limit means no
// limit; larger limits are capped.
func parsePage(rawLimit, rawOffset string) services.Page {
	page := services.Page{}
	if limit, err := strconv.Atoi(strings.TrimSpace(rawLimit)); err == nil && limit > 0 {
		page.Limit = limit
	}
	if page.Limit > maxPageLimit {
		page.Limit = maxPageLimit
	}
	if offset, err := strconv.Atoi(strings.TrimSpace(rawOffset)); err == nil && offset >= 0 {
		page.Offset = offset
	}
	return page
}
