package shared

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

type twimlResponse struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

// WriteTwiML answers a Twilio webhook with one <Message> element per chunk.
// Marshalling escapes the message text, so user-controlled input cannot
// break out of the XML.
func WriteTwiML(w http.ResponseWriter, messages ...string) {
	payload, err := xml.Marshal(twimlResponse{Messages: messages})
	if err != nil {
		slog.Error("twiml marshal failed", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(xmlHeader))
	_, _ = w.Write(payload)
}

// Chunk splits a reply into pieces no longer than limit runes, preferring
// line boundaries so formatted blocks like payslips stay readable. WhatsApp
// rejects messages over 4096 characters.
func Chunk(message string, limit int) []string {
	if limit <= 0 || len([]rune(message)) <= limit {
		return []string{message}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range strings.Split(message, "\n") {
		runes := []rune(line)
		// A single line longer than the limit is hard-split.
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		if currentLen > 0 && currentLen+1+len(runes) > limit {
			flush()
		}
		if currentLen > 0 {
			current.WriteString("\n")
			currentLen++
		}
		current.WriteString(string(runes))
		currentLen += len(runes)
	}
	flush()

	if len(chunks) == 0 {
		return []string{""}
	}
	return chunks
}
