package history

import (
	"path/filepath"
	"strings"
	"time"
)

// GenerationType records how a model entered the history.
type GenerationType string

const (
	TypeText  GenerationType = "text"
	TypeImage GenerationType = "image"
	TypeFile  GenerationType = "file"
)

// Entry is one generated or imported model. JSON field names are the persisted format.
type Entry struct {
	ID              string         `json:"id"`
	ModelURL        string         `json:"modelURL"`
	CreatedAt       time.Time      `json:"createdAt"`
	GenerationType  GenerationType `json:"generationType"`
	PromptText      string         `json:"promptText,omitempty"`
	PromptImageData []byte         `json:"promptImageData,omitempty"`
	GenerateTexture bool           `json:"generateTexture"`
	ModelName       string         `json:"modelName"`
	FileSize        int64          `json:"fileSize"`
}

func (e Entry) clone() Entry {
	if e.PromptImageData != nil {
		e.PromptImageData = append([]byte(nil), e.PromptImageData...)
	}
	return e
}

// DisplayName derives a model name from a prompt or a file path.
func DisplayName(t GenerationType, prompt, path string) string {
	switch t {
	case TypeText:
		p := strings.Join(strings.Fields(prompt), " ")
		if r := []rune(p); len(r) > 40 {
			p = strings.TrimSpace(string(r[:40])) + "…"
		}
		if p != "" {
			return p
		}
	case TypeImage:
		return "Image model"
	}
	base := filepath.Base(path)
	if n := strings.TrimSuffix(base, filepath.Ext(base)); n != "" && n != "." {
		return n
	}
	return "Model"
}
