package pronounce

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

const sayInventorySample = `Alex                en_US    # Most people recognize me by my voice.
Bad News            en_US    # The light you see at the end of the tunnel is the headlamp of a fast approaching train.
Milena              ru_RU    # Здравствуйте, меня зовут Milena.
not an inventory line
`

func TestParseSayVoices(t *testing.T) {
	voices := parseSayVoices(sayInventorySample)
	want := []OptionValue{
		{Code: "Alex", Label: "Alex (en_US)"},
		{Code: "Bad News", Label: "Bad News (en_US)"},
		{Code: "Milena", Label: "Milena (ru_RU)"},
	}
	if len(voices) != len(want) {
		t.Fatalf("parsed %d voices, want %d", len(voices), len(want))
	}
	for i := range want {
		if voices[i] != want[i] {
			t.Errorf("voice[%d] = %+v, want %+v", i, voices[i], want[i])
		}
	}
}

func TestSayTransform(t *testing.T) {
	p := &Say{voices: parseSayVoices(sayInventorySample), log: zerolog.Nop()}
	spec := p.Options()[0]
	if spec.Default != "Alex" {
		t.Errorf("default = %q, want the first inventory voice", spec.Default)
	}

	tests := []struct{ in, want string }{
		{"Alex", "Alex"},
		{"alex", "Alex"},
		{"ALEX", "Alex"},
		{"bad news", "Bad News"},
		{"badnews", "Bad News"},
		{"Fiona", "Fiona"},
	}
	for _, tt := range tests {
		if got := spec.Transform(tt.in); got != tt.want {
			t.Errorf("Transform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSay_Run_Unavailable(t *testing.T) {
	p := &Say{log: zerolog.Nop()}

	err := p.Run(context.Background(), "hello", nil, "clip.mp3")
	var ue *UnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("Run() error = %v, want *UnavailableError", err)
	}
	if !strings.Contains(ue.Reason, "not available") {
		t.Errorf("reason = %q, want one naming the missing command", ue.Reason)
	}
}

func TestSay_Run_TooLong(t *testing.T) {
	p := &Say{voices: parseSayVoices(sayInventorySample), log: zerolog.Nop()}

	err := p.Run(context.Background(), strings.Repeat("a", sayTextLimit+1), nil, "clip.mp3")
	var tl *TextTooLongError
	if !errors.As(err, &tl) {
		t.Fatalf("Run() error = %v, want *TextTooLongError", err)
	}
	if tl.Limit != sayTextLimit {
		t.Errorf("limit = %d, want %d", tl.Limit, sayTextLimit)
	}
}
