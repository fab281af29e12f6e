package minio

import (
	"testing"

	"DateServer/config"

	"github.com/stretchr/testify/assert"
)

var allowedImages = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

func TestResolveContentType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		detected string
		fileName string
		want     string
		wantErr  error
	}{
		{name: "jpeg_alias", declared: "image/jpg", detected: "image/jpeg", fileName: "a.jpg", want: "image/jpg"},
		{name: "declared_ignored_when_mismatch", declared: "image/png", detected: "image/jpeg", fileName: "a.jpeg", want: "image/jpeg"},
		{name: "not_allowed", detected: "application/pdf", fileName: "a.pdf", wantErr: ErrFileTypeNotAllow},
		{name: "forged_extension", detected: "image/png", fileName: "a.jpg", wantErr: ErrExtensionForged},
		{name: "no_file_name", detected: "image/webp", want: "image/webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveContentType(tt.declared, tt.detected, tt.fileName, allowedImages)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildObjectNameAndURL(t *testing.T) {
	assert.Equal(t, "posters/id-1.png", buildObjectName("/posters/", "Poster.PNG", "id-1"))
	assert.Equal(t, "id-2", buildObjectName("", "", "id-2"))
	assert.Equal(t, "http://cdn:9000/justdate/posters/x.png", publicURL("http://cdn:9000/", "justdate", "/posters/x.png"))
}

func TestObjectNameFromURL(t *testing.T) {
	c := &MinIOClient{config: config.DefaultMinIOConfig()}

	name, ok := c.ObjectNameFromURL("http://localhost:9000/justdate/posters/x.png")
	assert.True(t, ok)
	assert.Equal(t, "posters/x.png", name)

	_, ok = c.ObjectNameFromURL("https://image.tmdb.org/t/p/w500/x.jpg")
	assert.False(t, ok)
}
