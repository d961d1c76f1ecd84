package pronounce

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"

	ttsv3 "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/tts/v3"

	"github.com/snarg/clipcast/internal/media"
	"github.com/snarg/clipcast/internal/transcode"
)

const (
	yandexEndpoint  = "tts.api.cloud.yandex.net:443"
	yandexModel     = "general"
	yandexTextLimit = 250 // API utterance cap, in characters
)

// YandexConfig carries SpeechKit credentials.
type YandexConfig struct {
	APIKey   string
	FolderID string
}

// YandexSynth owns the gRPC session to the SpeechKit v3 synthesizer. One
// handle is shared by every yandex provider instance; the caller closes it
// at shutdown.
type YandexSynth struct {
	conn     *grpc.ClientConn
	client   ttsv3.SynthesizerClient
	apiKey   string
	folderID string
}

// DialYandex opens the synthesizer session. The connection is lazy; no
// traffic happens until the first synthesis.
func DialYandex(cfg YandexConfig) (*YandexSynth, error) {
	creds := credentials.NewTLS(&tls.Config{})
	conn, err := grpc.Dial(yandexEndpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("dial speechkit: %w", err)
	}
	return &YandexSynth{
		conn:     conn,
		client:   ttsv3.NewSynthesizerClient(conn),
		apiKey:   cfg.APIKey,
		folderID: cfg.FolderID,
	}, nil
}

// Synthesize streams one utterance and returns the assembled WAV payload.
func (s *YandexSynth) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Api-Key "+s.apiKey)
	ctx = metadata.AppendToOutgoingContext(ctx, "x-folder-id", s.folderID)

	req := &ttsv3.UtteranceSynthesisRequest{}
	req.SetModel(yandexModel)
	req.SetText(text)

	hint := &ttsv3.Hints{}
	hint.SetVoice(voice)
	req.SetHints([]*ttsv3.Hints{hint})

	containerAudio := &ttsv3.ContainerAudio{}
	containerAudio.SetContainerAudioType(ttsv3.ContainerAudio_WAV)
	audioSpec := &ttsv3.AudioFormatOptions{}
	audioSpec.SetContainerAudio(containerAudio)
	req.SetOutputAudioSpec(audioSpec)
	req.SetLoudnessNormalizationType(ttsv3.UtteranceSynthesisRequest_LUFS)

	stream, err := s.client.UtteranceSynthesis(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("start synthesis: %w", err)
	}

	var buf bytes.Buffer
	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("receive audio: %w", err)
		}
		if chunk := resp.GetAudioChunk(); chunk != nil {
			buf.Write(chunk.GetData())
		}
	}
	return buf.Bytes(), nil
}

func (s *YandexSynth) Close() error {
	return s.conn.Close()
}

// SpeechKit v3 voices offered as options.
var yandexVoices = []OptionValue{
	{Code: "marina", Label: "Marina (ru-RU)"},
	{Code: "alena", Label: "Alena (ru-RU)"},
	{Code: "jane", Label: "Jane (ru-RU)"},
	{Code: "omazh", Label: "Omazh (ru-RU)"},
	{Code: "zahar", Label: "Zahar (ru-RU)"},
	{Code: "ermil", Label: "Ermil (ru-RU)"},
	{Code: "filipp", Label: "Filipp (ru-RU)"},
	{Code: "john", Label: "John (en-US)"},
	{Code: "lea", Label: "Lea (de-DE)"},
}

// Yandex synthesizes clips with SpeechKit.
type Yandex struct {
	deps Deps
	log  zerolog.Logger
}

var _ Provider = (*Yandex)(nil)

func NewYandex(deps Deps) *Yandex {
	return &Yandex{deps: deps, log: deps.Log.With().Str("provider", "yandex").Logger()}
}

func (p *Yandex) Name() string { return "yandex" }

func (p *Yandex) Desc() string {
	return "Yandex SpeechKit speech synthesis (requires API credentials)"
}

func (p *Yandex) Options() []OptionSpec {
	aliases := make(map[string]string, len(yandexVoices)+9)
	for _, v := range yandexVoices {
		aliases[normalize(v.Code)] = v.Code
	}
	// Language names pick that language's lead voice.
	for alias, code := range map[string]string{
		"russian": "marina", "ru": "marina", "ru-RU": "marina",
		"english": "john", "en": "john", "en-US": "john",
		"german": "lea", "de": "lea", "de-DE": "lea",
	} {
		aliases[normalize(alias)] = code
	}

	return []OptionSpec{{
		Key:       "voice",
		Label:     "Voice",
		Values:    yandexVoices,
		Default:   "marina",
		Transform: aliasTransform(aliases, nil),
	}}
}

func (p *Yandex) Run(ctx context.Context, text string, opts map[string]string, dst string) error {
	if p.deps.Yandex == nil {
		return &UnavailableError{Backend: "yandex", Reason: "not configured (set YANDEX_API_KEY and YANDEX_FOLDER_ID)"}
	}
	if n := utf8.RuneCountInString(text); n > yandexTextLimit {
		return &TextTooLongError{Limit: yandexTextLimit, Length: n}
	}
	resolved, err := Resolve(p.Options(), opts)
	if err != nil {
		return err
	}

	payload, err := p.deps.Yandex.Synthesize(ctx, text, resolved["voice"])
	if err != nil {
		return err
	}
	if len(payload) < 1024 {
		return fmt.Errorf("synthesized payload is %d bytes, want at least 1024", len(payload))
	}
	if got := media.Detect(payload); got != "audio/wav" {
		return fmt.Errorf("synthesized payload is %s, want audio/wav", got)
	}

	if strings.EqualFold(filepath.Ext(dst), ".wav") {
		return media.WriteAtomic(dst, payload)
	}
	scratch := media.TempPath(p.deps.ScratchDir, "wav")
	if err := media.WriteAtomic(scratch, payload); err != nil {
		return err
	}
	// Convert consumes the scratch file on every exit path.
	return p.deps.Converter.Convert(ctx, scratch, dst, transcode.Requirements{MinSrcSize: 1024})
}
