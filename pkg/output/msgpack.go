package output

import (
	"context"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackFormatter encodes reports as MessagePack using the JSON field names.
type MsgpackFormatter struct {
	opts FormatOptions
}

// NewMsgpackFormatter creates a new MessagePack formatter.
func NewMsgpackFormatter(opts FormatOptions) *MsgpackFormatter {
	return &MsgpackFormatter{opts: opts}
}

// Name returns the format name.
func (f *MsgpackFormatter) Name() string {
	return "msgpack"
}

// Format renders the report as a single MessagePack value.
func (f *MsgpackFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")

	if f.opts.Quiet {
		return enc.Encode(NewBrief(report))
	}
	return enc.Encode(report)
}
