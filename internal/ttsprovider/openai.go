package ttsprovider

import (
	"context"
	"errors"
	"io"
	"net"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kazuvin/teto/internal/script"
	tetoerrors "github.com/kazuvin/teto/pkg/errors"
	"github.com/kazuvin/teto/pkg/logger"
)

// OpenAIProvider is a concrete Provider backed by the OpenAI TTS REST
// endpoint (audio.speech).
type OpenAIProvider struct {
	client *openai.Client
	log    logger.Logger
}

// NewOpenAI constructs a Provider from an API key. log may be nil.
func NewOpenAI(apiKey string, log logger.Logger) *OpenAIProvider {
	if log == nil {
		log = logger.NewNoop()
	}
	return &OpenAIProvider{client: openai.NewClient(apiKey), log: log}
}

func (p *OpenAIProvider) Synthesize(ctx context.Context, text string, voice script.VoiceConfig) (Result, error) {
	model := openai.SpeechModel(voice.ModelID)
	if model == "" {
		model = openai.TTSModel1
	}
	v := openai.SpeechVoice(voice.VoiceName)
	if v == "" {
		v = openai.VoiceAlloy
	}
	format := openai.SpeechResponseFormat(voice.OutputFormat)
	if format == "" {
		format = openai.SpeechResponseFormatMp3
	}
	speed := voice.Speed
	if speed == 0 {
		speed = 1.0
	}

	p.log.WithField("voice", string(v)).WithField("text_len", len(text)).Debug("synthesizing speech via OpenAI")

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          model,
		Input:          text,
		Voice:          v,
		ResponseFormat: format,
		Speed:          speed,
	})
	if err != nil {
		return Result{}, classifyOpenAIError(err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return Result{}, tetoerrors.TtsNetwork(err)
	}

	return Result{Bytes: data, DeclaredExt: extForFormat(string(format))}, nil
}

func (p *OpenAIProvider) EstimateDuration(text string, voice script.VoiceConfig) float64 {
	speed := voice.Speed
	if speed == 0 {
		speed = 1.0
	}
	return EstimateDurationHeuristic(text, speed)
}

func extForFormat(format string) string {
	switch format {
	case string(openai.SpeechResponseFormatWav):
		return "wav"
	case string(openai.SpeechResponseFormatOpus):
		return "opus"
	case string(openai.SpeechResponseFormatAac):
		return "aac"
	case string(openai.SpeechResponseFormatFlac):
		return "flac"
	default:
		return "mp3"
	}
}

// classifyOpenAIError maps the go-openai client's error shapes onto the
// taxonomy spec §7 requires every TTSProvider to return.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return tetoerrors.TtsAuth(err)
		case apiErr.HTTPStatusCode == 429:
			return tetoerrors.TtsQuota(err)
		case apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500:
			return tetoerrors.TtsInvalid(err)
		case apiErr.HTTPStatusCode >= 500:
			return tetoerrors.TtsServer(err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return tetoerrors.TtsNetwork(err)
	}

	return tetoerrors.TtsNetwork(err)
}

var _ Provider = (*OpenAIProvider)(nil)
