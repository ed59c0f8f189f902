package middleware

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Notice kinds shown to users after a redirect.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

// Notice is a transient user-facing message, shown once on the next
// rendered page.
type Notice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

const noticeCookie = "notice"

// SetNotice queues a notice for the next rendered page. Notices ride in
// a one-shot cookie because the session itself is a stateless signed
// token with nowhere to park per-request state.
func SetNotice(c *fiber.Ctx, kind, message string) {
	body, err := json.Marshal(Notice{Type: kind, Message: message})
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     noticeCookie,
		Value:    base64.URLEncoding.EncodeToString(body),
		Path:     "/",
		HTTPOnly: true,
	})
}

// PopNotice reads and clears the pending notice, if any.
func PopNotice(c *fiber.Ctx) *Notice {
	raw := c.Cookies(noticeCookie)
	if raw == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     noticeCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	body, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var notice Notice
	if err := json.Unmarshal(body, &notice); err != nil {
		return nil
	}
	return &notice
}
