package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/genai"

	"github.com/kazuvin/teto/internal/script"
	tetoerrors "github.com/kazuvin/teto/pkg/errors"
	"github.com/kazuvin/teto/pkg/logger"
)

const defaultImagenModel = "imagen-3.0-generate-002"

// GeminiResolver resolves {description, generate} visuals via Google's
// image generation API, caching generated images under
// <generatedDir>/generated/ keyed by a hash of the description so a
// repeated description within one compile's artifacts is only generated
// once — the image-side analogue of TTSCache, but scoped to a single
// compile's output directory rather than process-wide.
type GeminiResolver struct {
	apiKey       string
	model        string
	generatedDir string
	log          logger.Logger
}

// NewGemini constructs a GeminiResolver writing generated images under
// <generatedDir>/generated/.
func NewGemini(apiKey, generatedDir string, log logger.Logger) *GeminiResolver {
	if log == nil {
		log = logger.NewNoop()
	}
	return &GeminiResolver{apiKey: apiKey, model: defaultImagenModel, generatedDir: generatedDir, log: log}
}

func (r *GeminiResolver) Resolve(ctx context.Context, v script.Visual) (string, error) {
	if !v.IsGenerated() {
		return "", tetoerrors.Validation("GeminiResolver requires a {description, generate} visual")
	}

	dir := filepath.Join(r.generatedDir, "generated")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", tetoerrors.EncoderIo(err)
	}

	key := descriptionKey(v.Description)
	outPath := filepath.Join(dir, key+".png")
	if _, err := os.Stat(outPath); err == nil {
		return outPath, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  r.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", tetoerrors.TtsNetwork(err)
	}

	r.log.WithField("description_len", len(v.Description)).Debug("generating image via Gemini")

	resp, err := client.Models.GenerateImages(ctx, r.model, v.Description, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return "", classifyGenaiError(err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", tetoerrors.TtsInvalid(fmt.Errorf("no image generated for description"))
	}

	if err := os.WriteFile(outPath, resp.GeneratedImages[0].Image.ImageBytes, 0o644); err != nil {
		return "", tetoerrors.EncoderIo(err)
	}
	return outPath, nil
}

func descriptionKey(description string) string {
	sum := sha256.Sum256([]byte(description))
	return hex.EncodeToString(sum[:])[:16]
}

func classifyGenaiError(err error) error {
	// The genai SDK surfaces transport errors directly; without a typed
	// status code to branch on here, treat generation failures as
	// retryable network errors, matching the teacher's TTS provider
	// convention of defaulting unclassified failures to the
	// retryable tier.
	return tetoerrors.TtsNetwork(err)
}

var _ Resolver = (*GeminiResolver)(nil)
