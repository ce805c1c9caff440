package model

import (
	"fmt"
	"math/rand"
	"time"
)

// VisualConfig is the durable (image, color) pair chosen once per course and
// reused for every language and every future run. Once written for a course
// alias it is never regenerated unless the key is explicitly removed, which
// keeps a course visually consistent everywhere it appears.
type VisualConfig struct {
	ImageURL  string    `json:"image_url"`
	BgColor   string    `json:"bg_color"`
	CreatedAt time.Time `json:"created_at"`
	SourceURL string    `json:"source_url,omitempty"`
}

// RandomBgColor returns a random light background color as six hex digits
// (no leading '#'). Channels stay in 0xB4..0xFF so cover text stays readable.
func RandomBgColor() string {
	light := func() int { return 180 + rand.Intn(76) }
	return fmt.Sprintf("%02x%02x%02x", light(), light(), light())
}
