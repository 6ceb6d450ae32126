package service

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/lshigami/quizx/config"
	"github.com/lshigami/quizx/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificateRendererProducesPNG(t *testing.T) {
	renderer := NewCertificateRenderer("")

	cert, err := renderer.Generate(context.Background(), CertificateRequest{
		Name:     "Learner",
		Subject:  model.SubjectMathematics,
		Score:    7,
		Total:    10,
		IssuedAt: testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", cert.MIMEType)
	assert.Equal(t, "rendered", cert.Source)

	img, err := png.Decode(bytes.NewReader(cert.Data))
	require.NoError(t, err)
	assert.Equal(t, certificateWidth, img.Bounds().Dx())
	assert.Equal(t, certificateHeight, img.Bounds().Dy())
}

func TestCertificateRendererRejectsIncompleteRequest(t *testing.T) {
	_, err := NewCertificateRenderer("").Generate(context.Background(), CertificateRequest{Name: "x"})
	assert.Error(t, err)
}

func TestCertificateServiceFallsBackWithoutKey(t *testing.T) {
	svc, err := NewCertificateService(nil, &config.Config{Certificate: config.Certificate{FontPath: "/does/not/exist.ttf"}})
	require.NoError(t, err)

	cert, err := svc.Generate(context.Background(), CertificateRequest{Name: "Ada", Subject: model.SubjectBiology, Score: 3, Total: 4})
	require.NoError(t, err)
	assert.Equal(t, "rendered", cert.Source)
}
