// Package logging provides the slog loggers used by the searchd adapter and
// the command line tool.
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"
)

// PrettyJSONHandler is a custom handler that pretty prints JSON in development
type PrettyJSONHandler struct {
	*slog.JSONHandler
	writer io.Writer
	attrs  []slog.Attr
}

func (h *PrettyJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs()+3)
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = attrValue(a.Value)
		return true
	})

	attrs["time"] = r.Time.Format(time.RFC3339)
	attrs["level"] = r.Level.String()
	attrs["msg"] = r.Message

	prettyJSON, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return err
	}

	_, err = h.writer.Write(append(prettyJSON, '\n'))
	return err
}

// WithAttrs keeps the attributes so that Handle prints them. Logger.With
// goes through here.
func (h *PrettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PrettyJSONHandler{
		JSONHandler: h.JSONHandler,
		writer:      h.writer,
		attrs:       merged,
	}
}

// errors marshal to {} with encoding/json
func attrValue(v slog.Value) any {
	if err, ok := v.Any().(error); ok {
		return err.Error()
	}
	return v.Any()
}

// NewPrettyJSONHandler returns a handler writing indented JSON records of at
// least level to w.
func NewPrettyJSONHandler(w io.Writer, level slog.Leveler) *PrettyJSONHandler {
	return &PrettyJSONHandler{
		JSONHandler: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
		writer:      w,
	}
}

// New returns a logger writing records of at least level to w, as one JSON
// object per line or, when pretty is set, as indented JSON.
func New(w io.Writer, level slog.Leveler, pretty bool) *slog.Logger {
	if pretty {
		return slog.New(NewPrettyJSONHandler(w, level))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

var ProdLogger = New(os.Stderr, slog.LevelInfo, false)

var DevLogger = New(os.Stderr, slog.LevelDebug, true)

// Discard drops every record.
var Discard = slog.New(slog.DiscardHandler)
