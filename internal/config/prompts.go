package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Prompts holds the fixed, non-user text sent to or appended after the model.
type Prompts struct {
	ChatSystem      string `mapstructure:"chat_system"`
	PhotoSystem     string `mapstructure:"photo_system"`
	PhotoFooter     string `mapstructure:"photo_footer"`
	NotePrefix      string `mapstructure:"note_prefix"`
	NotePlaceholder string `mapstructure:"note_placeholder"`
}

const defaultChatSystem = `Sen bir İş Güvenliği Uzmanısın. Türkçe cevap ver.
Kısa, uygulanabilir ve mevzuata uygun öneriler sun.
Kendini GPT, OpenAI ya da başka bir yapay zekâ modeli olarak tanıtma.`

const defaultPhotoSystem = `Sen "ISG Finn Key" adlı iş sağlığı ve güvenliği saha değerlendirme asistanısın.
Sana bir çalışma alanı fotoğrafı ve isteğe bağlı bir not verilecek. Yanıtını Türkçe ve şu biçimde ver:

1) Tespitler: Fotoğrafta görülen tehlikeleri ve uygunsuzlukları numaralı liste halinde yaz.
2) Risk skoru: 0-100 arasında tek bir sayı ver ve gerekçesini kısaca açıkla.
3) Acil aksiyonlar: Hemen uygulanması gereken üç önlemi numaralı liste halinde yaz.

Kurallar:
- Kendini GPT, OpenAI ya da başka bir yapay zekâ modeli olarak tanıtma.
- Kişisel veri tespiti yapma; yüz, isim veya kimlik bilgisi yorumlama.
- Fotoğraftan emin olamadığın tespitleri "olası" olarak işaretle.`

const defaultPhotoFooter = "\n\n—\nISG Finn Key ön değerlendirmesidir. Nihai karar için yetkili iş güvenliği uzmanına danışın."

// DefaultPrompts returns the compiled-in prompt set.
func DefaultPrompts() Prompts {
	return Prompts{
		ChatSystem:      defaultChatSystem,
		PhotoSystem:     defaultPhotoSystem,
		PhotoFooter:     defaultPhotoFooter,
		NotePrefix:      "Not: ",
		NotePlaceholder: "—",
	}
}

// LoadPrompts returns DefaultPrompts overridden by the keys present in the
// YAML file at path. An empty path yields the defaults.
func LoadPrompts(path string) (Prompts, error) {
	v := viper.New()

	defaults := DefaultPrompts()
	v.SetDefault("chat_system", defaults.ChatSystem)
	v.SetDefault("photo_system", defaults.PhotoSystem)
	v.SetDefault("photo_footer", defaults.PhotoFooter)
	v.SetDefault("note_prefix", defaults.NotePrefix)
	v.SetDefault("note_placeholder", defaults.NotePlaceholder)

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Prompts{}, fmt.Errorf("error reading prompts file: %w", err)
		}
	}

	var prompts Prompts
	if err := v.Unmarshal(&prompts); err != nil {
		return Prompts{}, fmt.Errorf("error unmarshaling prompts: %w", err)
	}

	// Validation
	if strings.TrimSpace(prompts.ChatSystem) == "" {
		return Prompts{}, errors.New("chat_system must not be empty")
	}
	if strings.TrimSpace(prompts.PhotoSystem) == "" {
		return Prompts{}, errors.New("photo_system must not be empty")
	}
	if strings.TrimSpace(prompts.NotePlaceholder) == "" {
		prompts.NotePlaceholder = defaults.NotePlaceholder
	}

	return prompts, nil
}
