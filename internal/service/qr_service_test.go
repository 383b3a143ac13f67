package service

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRServiceRenderIsDeterministic(t *testing.T) {
	svc := NewQRService("meetmii.com")

	first, err := svc.Render("ana")
	require.NoError(t, err)
	second, err := svc.Render("ana")
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second), "same username must render identical bytes")
}

func TestQRServiceRenderDiffersPerUsername(t *testing.T) {
	svc := NewQRService("meetmii.com")

	ana, err := svc.Render("ana")
	require.NoError(t, err)
	bob, err := svc.Render("bob")
	require.NoError(t, err)

	assert.False(t, bytes.Equal(ana, bob))
}

func TestQRServiceRenderProducesPNG(t *testing.T) {
	svc := NewQRService("meetmii.com")

	data, err := svc.Render("ana")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}
