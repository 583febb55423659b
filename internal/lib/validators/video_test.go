package validators

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
)

type lessonForm struct {
	Video string `validate:"omitempty,videolink"`
}

func TestVideoLink(t *testing.T) {
	v := validator.New()
	Register(v)

	tests := []struct {
		name    string
		video   string
		wantErr bool
	}{
		{name: "пустая ссылка допустима", video: "", wantErr: false},
		{name: "youtube разрешен", video: "https://youtube.com/x", wantErr: false},
		{name: "www.youtube разрешен", video: "https://www.youtube.com/watch?v=abc", wantErr: false},
		{name: "vimeo запрещен", video: "https://vimeo.com/x", wantErr: true},
		{name: "произвольный сайт запрещен", video: "https://example.com/video.mp4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(lessonForm{Video: tt.video})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
