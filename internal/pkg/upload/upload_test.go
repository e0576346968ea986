package upload

import (
	"testing"
	"time"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectImage(t *testing.T) {
	img, err := DetectImage(File{Data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "png", img.Ext)

	_, err = DetectImage(File{Filename: "notes.txt", Data: []byte("plain text file")})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), MsgNotAnImage)
}

func TestNames(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	assert.Equal(t, "user-u1-1700000000000.jpeg", UserPhotoName("u1", at, "jpeg"))
	assert.Equal(t, "tour-t1-1700000000000-cover.png", TourCoverName("t1", at, "png"))
	assert.Equal(t, "tour-t1-1700000000000-2.png", TourImageName("t1", at, 2, "png"))
}
