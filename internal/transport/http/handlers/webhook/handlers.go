package webhook

import (
	"context"
	"net/http"
	"strings"

	"sawa/internal/transport/http/shared"
)

// Responder turns one inbound message into one reply. The dialog service is
// the production implementation.
type Responder interface {
	HandleMessage(ctx context.Context, phone, body string) string
}

type Handler struct {
	Dialog         Responder
	ReplyCharLimit int
}

func NewHandler(svc Responder, replyCharLimit int) *Handler {
	return &Handler{Dialog: svc, ReplyCharLimit: replyCharLimit}
}

// HandleIncoming is the Twilio WhatsApp webhook. Twilio posts form data per
// inbound message; the reply rides back in the TwiML response body.
func (h *Handler) HandleIncoming(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	from := strings.TrimSpace(r.PostForm.Get("From"))
	if from == "" {
		http.Error(w, "missing sender", http.StatusBadRequest)
		return
	}
	phone := strings.TrimPrefix(from, "whatsapp:")
	body := r.PostForm.Get("Body")

	reply := h.Dialog.HandleMessage(r.Context(), phone, body)
	shared.WriteTwiML(w, shared.Chunk(reply, h.ReplyCharLimit)...)
}
