package generation

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"forge3d/internal/genapi"
)

// limits are the input caps applied before submission.
type limits struct {
	maxPromptLength int
	maxImageBytes   int64
	maxDimension    int
	jpegQuality     int
}

// prepared is a validated input ready to submit.
type prepared struct {
	req   genapi.SubmitRequest
	input Input
}

func (l limits) prepare(in Input) (prepared, error) {
	switch in.Mode {
	case ModeText:
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return prepared{}, validationError{msg: "Please enter a description of the model"}
		}
		if n := utf8.RuneCountInString(text); n > l.maxPromptLength {
			return prepared{}, validationError{msg: fmt.Sprintf("Description is too long (%d/%d characters)", n, l.maxPromptLength)}
		}
		in.Text, in.Image = text, nil
		return prepared{req: genapi.SubmitRequest{Text: text, Texture: in.Texture}, input: in}, nil
	case ModeImage:
		if len(in.Image) == 0 {
			return prepared{}, validationError{msg: "Please select an image"}
		}
		jpeg, err := compressImage(in.Image, l.maxDimension, l.jpegQuality)
		if err != nil {
			return prepared{}, validationError{msg: "The selected image could not be read"}
		}
		if int64(len(jpeg)) > l.maxImageBytes {
			return prepared{}, validationError{msg: fmt.Sprintf("Image is too large (%.1f MB, limit %.1f MB)", mb(int64(len(jpeg))), mb(l.maxImageBytes))}
		}
		in.Text, in.Image = "", jpeg
		return prepared{req: genapi.SubmitRequest{Image: base64.StdEncoding.EncodeToString(jpeg), Texture: in.Texture}, input: in}, nil
	case ModeFile:
		return prepared{}, validationError{msg: "Files are imported, not generated"}
	default:
		return prepared{}, validationError{msg: fmt.Sprintf("unknown generation mode %q", in.Mode)}
	}
}

func mb(n int64) float64 { return float64(n) / (1 << 20) }

// Validate checks in against the configured limits without any network call.
func (m *Manager) Validate(in Input) error {
	_, err := m.limits.prepare(in)
	return err
}

// CanGenerate reports whether Validate accepts in.
func (m *Manager) CanGenerate(in Input) bool { return m.Validate(in) == nil }
